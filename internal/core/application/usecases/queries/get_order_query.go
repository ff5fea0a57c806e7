package queries

import (
	"errors"

	"pizzaworkflow/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads the stored order document.
type GetOrderQuery struct {
	orderID string

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID string) (GetOrderQuery, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() string { return q.orderID }
