package ports

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/order"
)

// OrderReader reads stored order documents.
type OrderReader interface {
	// Get returns *errs.ObjectNotFoundError for an unknown order id and never
	// a default order.
	Get(ctx context.Context, orderID string) (order.Order, error)
}
