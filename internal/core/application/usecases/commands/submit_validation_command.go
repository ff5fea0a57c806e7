package commands

import (
	"errors"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/pkg/guard"
)

var ErrSubmitValidationCommandIsNotConstructed = errors.New(
	"SubmitValidationCommand must be created via NewSubmitValidationCommand constructor",
)

// SubmitValidationCommand carries a validation decision for an order.
type SubmitValidationCommand struct { //nolint:recvcheck //using for validation
	orderID  string
	approved bool
	reason   string

	guard guard.ConstructorGuard
}

func NewSubmitValidationCommand(orderID string, approved bool, reason string) (SubmitValidationCommand, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return SubmitValidationCommand{}, err
	}

	return SubmitValidationCommand{
		orderID:  id,
		approved: approved,
		reason:   reason,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitValidationCommand) Validate() error {
	return c.guard.Validate(ErrSubmitValidationCommandIsNotConstructed)
}

func (c SubmitValidationCommand) OrderID() string { return c.orderID }

func (c SubmitValidationCommand) Decision() workflow.Decision {
	return workflow.Decision{OrderID: c.orderID, Approved: c.approved, Reason: c.reason}
}
