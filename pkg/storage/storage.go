// Package storage defines the key-value store used for background task
// registries and autosave history. Implementations are small and swappable:
// an in-memory store with a byte quota, a per-key file store and a Redis
// store. Values are opaque byte slices; callers own the serialization.
package storage

import "errors"

// Standard storage error types that all implementations should use.
var (
	// ErrNotFound indicates no value exists for the given key.
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded indicates a write was rejected because the store's
	// capacity would be exceeded.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KV is the minimal key-value contract shared by all backends.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value. Returns
	// ErrQuotaExceeded when the backend cannot accept the write.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
