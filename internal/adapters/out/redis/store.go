// Package redis implements the state store and the instance repository on
// Redis. State entries are plain string values; instances are stored as
// snapshot JSON with one Set per workflow state for recovery scans.
//
// The caller owns the client lifecycle:
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	states := redis.NewStateStore(client)
package redis

import (
	"context"
	"errors"

	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

var _ ports.StateStore = (*StateStore)(nil)

type StateStore struct {
	client goredis.Cmdable
}

func NewStateStore(client goredis.Cmdable) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Get(ctx context.Context, storeName, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, stateKey(storeName, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.NewStoreUnavailableError(storeName, key, err)
	}
	return value, true, nil
}

func (s *StateStore) Set(ctx context.Context, storeName, key string, value []byte) error {
	if err := s.client.Set(ctx, stateKey(storeName, key), value, 0).Err(); err != nil {
		return errs.NewStoreUnavailableError(storeName, key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, storeName, key string) error {
	if err := s.client.Del(ctx, stateKey(storeName, key)).Err(); err != nil {
		return errs.NewStoreUnavailableError(storeName, key, err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
