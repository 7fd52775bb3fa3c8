package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// DecodeError reports a stored value that could not be decoded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// JSON provides JSON-encoded access to a single key of type T.
type JSON[T any] struct {
	store Store
	key   string
}

// Key binds a JSON[T] to key in store.
func Key[T any](store Store, key string) *JSON[T] {
	return &JSON[T]{store: store, key: key}
}

// Name returns the bound key.
func (j *JSON[T]) Name() string {
	return j.key
}

// Get loads and decodes the value. A missing key returns ErrNotFound; a
// malformed value returns a *DecodeError.
func (j *JSON[T]) Get(ctx context.Context) (T, error) {
	var v T
	raw, err := j.store.Get(ctx, j.key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, &DecodeError{Key: j.key, Err: err}
	}
	return v, nil
}

// Set encodes and stores value.
func (j *JSON[T]) Set(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", j.key, err)
	}
	return j.store.Set(ctx, j.key, string(data))
}

// Delete removes the key.
func (j *JSON[T]) Delete(ctx context.Context) error {
	return j.store.Delete(ctx, j.key)
}
