package commands

import (
	"errors"

	"pizzaworkflow/internal/pkg/guard"
)

var ErrDeleteOrderCommandIsNotConstructed = errors.New(
	"DeleteOrderCommand must be created via NewDeleteOrderCommand constructor",
)

// DeleteOrderCommand removes the stored order document. The workflow
// instance and anything already published are left alone.
type DeleteOrderCommand struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

func NewDeleteOrderCommand(orderID string) (DeleteOrderCommand, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return DeleteOrderCommand{}, err
	}
	return DeleteOrderCommand{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (c DeleteOrderCommand) Validate() error {
	return c.guard.Validate(ErrDeleteOrderCommandIsNotConstructed)
}

func (c DeleteOrderCommand) OrderID() string { return c.orderID }
