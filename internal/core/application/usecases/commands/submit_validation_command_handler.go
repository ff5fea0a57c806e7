package commands

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
)

type SubmitValidationResult struct {
	OrderID          string
	ValidationStatus string
}

// SubmitValidationCommandHandler delivers a ValidationComplete decision to
// the order's instance.
type SubmitValidationCommandHandler struct {
	engine ports.WorkflowEngine
}

func NewSubmitValidationCommandHandler(engine ports.WorkflowEngine) SubmitValidationCommandHandler {
	return SubmitValidationCommandHandler{engine: engine}
}

func (h SubmitValidationCommandHandler) Handle(
	ctx context.Context,
	cmd SubmitValidationCommand,
) (SubmitValidationResult, error) {
	if err := cmd.Validate(); err != nil {
		return SubmitValidationResult{}, err
	}

	decision := cmd.Decision()
	if err := h.engine.SignalValidation(ctx, workflow.InstanceID(cmd.OrderID()), decision); err != nil {
		return SubmitValidationResult{}, err
	}

	return SubmitValidationResult{OrderID: cmd.OrderID(), ValidationStatus: decision.Outcome()}, nil
}
