package queries

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/ports"
)

type GetOrderQueryHandler struct {
	orders ports.OrderReader
}

func NewGetOrderQueryHandler(orders ports.OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

// Handle returns the stored document, or an ObjectNotFoundError. It never
// returns a default order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (order.Order, error) {
	if err := query.Validate(); err != nil {
		return order.Order{}, err
	}
	return h.orders.Get(ctx, query.OrderID())
}
