package commands

import (
	"errors"

	"pizzaworkflow/internal/pkg/guard"
)

var ErrResumeOrderCommandIsNotConstructed = errors.New(
	"ResumeOrderCommand must be created via NewResumeOrderCommand constructor",
)

type ResumeOrderCommand struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

func NewResumeOrderCommand(orderID string) (ResumeOrderCommand, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return ResumeOrderCommand{}, err
	}
	return ResumeOrderCommand{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (c ResumeOrderCommand) Validate() error {
	return c.guard.Validate(ErrResumeOrderCommandIsNotConstructed)
}

func (c ResumeOrderCommand) OrderID() string { return c.orderID }
