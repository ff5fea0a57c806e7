package commands

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
)

type StartOrderResult struct {
	OrderID    string
	InstanceID string
	Status     workflow.State
}

// StartOrderCommandHandler starts the order workflow. Starting an order
// twice returns the running instance's status.
type StartOrderCommandHandler struct {
	engine ports.WorkflowEngine
}

func NewStartOrderCommandHandler(engine ports.WorkflowEngine) StartOrderCommandHandler {
	return StartOrderCommandHandler{engine: engine}
}

func (h StartOrderCommandHandler) Handle(ctx context.Context, cmd StartOrderCommand) (StartOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return StartOrderResult{}, err
	}

	report, err := h.engine.Start(ctx, cmd.Order())
	if err != nil {
		return StartOrderResult{}, err
	}

	return StartOrderResult{
		OrderID:    report.OrderID,
		InstanceID: report.InstanceID,
		Status:     report.State,
	}, nil
}
