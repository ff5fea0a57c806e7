package ports

import "context"

// OrderDeleter removes stored order documents.
type OrderDeleter interface {
	// Delete removes the document for orderID. Deleting an unknown order
	// succeeds.
	Delete(ctx context.Context, orderID string) error
}
