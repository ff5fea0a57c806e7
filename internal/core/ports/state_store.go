package ports

import "context"

// StateStore is the persistent key-value store holding order documents and
// validation records. Values are opaque JSON documents.
//
// Implementations return *errs.StoreUnavailableError when the backend cannot
// be reached. A missing key is not an error: Get reports it with found=false.
type StateStore interface {
	// Get returns the value stored under key in the named store.
	Get(ctx context.Context, storeName, key string) (value []byte, found bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, storeName, key string, value []byte) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, storeName, key string) error
}
