package commands

import (
	"errors"

	"pizzaworkflow/internal/pkg/guard"
)

var ErrPauseOrderCommandIsNotConstructed = errors.New(
	"PauseOrderCommand must be created via NewPauseOrderCommand constructor",
)

type PauseOrderCommand struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

func NewPauseOrderCommand(orderID string) (PauseOrderCommand, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return PauseOrderCommand{}, err
	}
	return PauseOrderCommand{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (c PauseOrderCommand) Validate() error {
	return c.guard.Validate(ErrPauseOrderCommandIsNotConstructed)
}

func (c PauseOrderCommand) OrderID() string { return c.orderID }
