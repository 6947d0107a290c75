// Package storage provides the local key-value store the repositories
// persist through. Values are JSON-serialized; write failures (including
// quota) are reported as errors, never panics.
package storage

import "errors"

var (
	// ErrNotFound is returned by Get for absent keys.
	ErrNotFound = errors.New("storage: key not found")
	// ErrQuotaExceeded is returned by Set when a value is too large for
	// the configured capacity.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Stats describes current store usage.
type Stats struct {
	Items int   `json:"items"`
	Bytes int64 `json:"bytes"`
}

// KV is a per-key JSON store.
type KV interface {
	// Get unmarshals the value at key into out; ErrNotFound if absent.
	Get(key string, out any) error
	// Set marshals value and stores it at key.
	Set(key string, value any) error
	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string) error
	// Keys lists stored keys with the given prefix.
	Keys(prefix string) ([]string, error)
	// Stats reports item count and total stored bytes.
	Stats() (Stats, error)
}
