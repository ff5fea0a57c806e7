package commands

import (
	"errors"

	"pizzaworkflow/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// DefaultCancelReason is recorded when the caller gives no reason.
const DefaultCancelReason = "cancelled by caller"

// CancelOrderCommand terminates an order's workflow. Nothing already stored
// or published is rolled back.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID string
	reason  string

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID, reason string) (CancelOrderCommand, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return CancelOrderCommand{}, err
	}
	if reason == "" {
		reason = DefaultCancelReason
	}
	return CancelOrderCommand{orderID: id, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() string { return c.orderID }

func (c CancelOrderCommand) Reason() string { return c.reason }
