// Package kv defines the durable key-value storage port. Values are opaque
// strings; encoding is the caller's concern.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is a persistent string-keyed store. Implementations must make Set
// durable before returning.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// ListKeys returns all keys in sorted order.
	ListKeys(ctx context.Context) ([]string, error)
}

// Has reports whether key exists in s.
func Has(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
