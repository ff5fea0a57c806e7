package orderstore

import (
	"context"
	"encoding/json"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/pkg/errs"
)

// Subscriber applies published order documents to a Store, so a read-side
// store can follow the notification topic.
type Subscriber struct {
	store *Store
}

func NewSubscriber(store *Store) (*Subscriber, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	return &Subscriber{store: store}, nil
}

// Handle decodes one notification payload and upserts it. Replaying the same
// payload leaves the stored document unchanged.
func (s *Subscriber) Handle(ctx context.Context, payload []byte) error {
	var update order.Order
	if err := json.Unmarshal(payload, &update); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	if _, err := s.store.Upsert(ctx, update); err != nil {
		return err
	}
	s.store.logger.InfoContext(ctx, "order update received", "order_id", update.ID(), "status", update.Status().String())
	return nil
}
