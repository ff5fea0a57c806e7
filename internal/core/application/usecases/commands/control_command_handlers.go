package commands

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
)

// Statuses reported by the control operations.
const (
	StatusPaused     = "paused"
	StatusResumed    = "resumed"
	StatusTerminated = "terminated"
)

type ControlResult struct {
	OrderID string
	Status  string
}

type PauseOrderCommandHandler struct {
	engine ports.WorkflowEngine
}

func NewPauseOrderCommandHandler(engine ports.WorkflowEngine) PauseOrderCommandHandler {
	return PauseOrderCommandHandler{engine: engine}
}

// Handle pauses the order's instance. Progress stops at the next stage
// boundary at the latest.
func (h PauseOrderCommandHandler) Handle(ctx context.Context, cmd PauseOrderCommand) (ControlResult, error) {
	if err := cmd.Validate(); err != nil {
		return ControlResult{}, err
	}
	if err := h.engine.Pause(ctx, workflow.InstanceID(cmd.OrderID())); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{OrderID: cmd.OrderID(), Status: StatusPaused}, nil
}

type ResumeOrderCommandHandler struct {
	engine ports.WorkflowEngine
}

func NewResumeOrderCommandHandler(engine ports.WorkflowEngine) ResumeOrderCommandHandler {
	return ResumeOrderCommandHandler{engine: engine}
}

func (h ResumeOrderCommandHandler) Handle(ctx context.Context, cmd ResumeOrderCommand) (ControlResult, error) {
	if err := cmd.Validate(); err != nil {
		return ControlResult{}, err
	}
	if err := h.engine.Resume(ctx, workflow.InstanceID(cmd.OrderID())); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{OrderID: cmd.OrderID(), Status: StatusResumed}, nil
}

type CancelOrderCommandHandler struct {
	engine ports.WorkflowEngine
}

func NewCancelOrderCommandHandler(engine ports.WorkflowEngine) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{engine: engine}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (ControlResult, error) {
	if err := cmd.Validate(); err != nil {
		return ControlResult{}, err
	}
	if err := h.engine.Terminate(ctx, workflow.InstanceID(cmd.OrderID()), cmd.Reason()); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{OrderID: cmd.OrderID(), Status: StatusTerminated}, nil
}
