package commands

import (
	"errors"
	"strings"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/pkg/errs"
	"pizzaworkflow/internal/pkg/guard"
)

var ErrStartOrderCommandIsNotConstructed = errors.New(
	"StartOrderCommand must be created via NewStartOrderCommand constructor",
)

// StartOrderCommand starts the workflow for a new order. Customer, pizza
// type and size are optional; empty values are left out of the order.
//
// Example:
//
//	cmd, err := NewStartOrderCommand("123", "Alice", "Margherita", "large")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type StartOrderCommand struct { //nolint:recvcheck //using for validation
	order order.Order

	guard guard.ConstructorGuard
}

func NewStartOrderCommand(orderID, customer, pizzaType, size string) (StartOrderCommand, error) {
	o, err := order.NewOrder(strings.TrimSpace(orderID))
	if err != nil {
		return StartOrderCommand{}, err
	}
	if customer != "" {
		o = o.WithCustomer(customer)
	}
	if pizzaType != "" {
		o = o.WithPizzaType(pizzaType)
	}
	if size != "" {
		o = o.WithSize(size)
	}

	return StartOrderCommand{order: o, guard: guard.NewConstructorGuard()}, nil
}

func (c StartOrderCommand) Validate() error {
	return c.guard.Validate(ErrStartOrderCommandIsNotConstructed)
}

func (c StartOrderCommand) Order() order.Order {
	return c.order
}

// requireOrderID is shared by the commands addressed by order id.
func requireOrderID(orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", errs.NewValueIsRequiredError("order_id")
	}
	return orderID, nil
}
