// Package orderstore merges and persists order documents in the state store
// under the key "order_<OrderId>".
//
// There is no optimistic concurrency control: concurrent upserts for the
// same order race under last-write-wins, and an older update can still
// overwrite the stored status.
package orderstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"
)

const keyPrefix = "order_"

// Key returns the state store key of an order document.
func Key(orderID string) string {
	return keyPrefix + orderID
}

type Store struct {
	state     ports.StateStore
	storeName string
	logger    *slog.Logger
}

var _ ports.OrderReader = (*Store)(nil)

func NewStore(state ports.StateStore, storeName string, logger *slog.Logger) (*Store, error) {
	if state == nil {
		return nil, errs.NewValueIsRequiredError("state")
	}
	if storeName == "" {
		return nil, errs.NewValueIsRequiredError("storeName")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		state:     state,
		storeName: storeName,
		logger:    logger.With("component", "order_store"),
	}, nil
}

// Upsert merges update into the stored document and writes the result back.
// Store failures are returned without retry.
func (s *Store) Upsert(ctx context.Context, update order.Order) (order.Order, error) {
	if err := update.Validate(); err != nil {
		return order.Order{}, err
	}

	stored, _, err := s.load(ctx, update.ID())
	if err != nil {
		return order.Order{}, err
	}
	merged := stored.Merge(update)

	data, err := json.Marshal(merged)
	if err != nil {
		return order.Order{}, errs.NewValueIsInvalidErrorWithCause("order", err)
	}

	key := Key(update.ID())
	if err = s.state.Set(ctx, s.storeName, key, data); err != nil {
		return order.Order{}, s.unavailable(key, err)
	}

	s.logger.DebugContext(ctx, "order stored", "order_id", merged.ID(), "status", merged.Status().String())
	return merged, nil
}

// Get returns the stored document or an ObjectNotFoundError.
func (s *Store) Get(ctx context.Context, orderID string) (order.Order, error) {
	if orderID == "" {
		return order.Order{}, errs.NewValueIsRequiredError("order_id")
	}

	stored, found, err := s.load(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}
	if !found {
		return order.Order{}, errs.NewObjectNotFoundError("order_id", orderID)
	}
	return stored, nil
}

func (s *Store) Delete(ctx context.Context, orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("order_id")
	}

	key := Key(orderID)
	if err := s.state.Delete(ctx, s.storeName, key); err != nil {
		return s.unavailable(key, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, orderID string) (order.Order, bool, error) {
	key := Key(orderID)
	data, found, err := s.state.Get(ctx, s.storeName, key)
	if err != nil {
		return order.Order{}, false, s.unavailable(key, err)
	}
	if !found {
		return order.Order{}, false, nil
	}

	var stored order.Order
	if err = json.Unmarshal(data, &stored); err != nil {
		return order.Order{}, false, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return stored, true, nil
}

func (s *Store) unavailable(key string, err error) error {
	if errors.Is(err, errs.ErrStoreUnavailable) {
		return err
	}
	return errs.NewStoreUnavailableError(s.storeName, key, err)
}
