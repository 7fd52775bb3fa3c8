package state

import (
	"context"
	"errors"
	"sync"

	"github.com/hay-kot/pear/internal/core/kv"
)

// tracker wraps a kv.Store and remembers the last value seen for each key.
type tracker struct {
	kv.Store

	mu   sync.Mutex
	seen map[string]*string // nil entry: key known to be absent
}

func newTracker(s kv.Store) *tracker {
	return &tracker{Store: s, seen: make(map[string]*string)}
}

func (t *tracker) Get(ctx context.Context, key string) (string, error) {
	v, err := t.Store.Get(ctx, key)
	switch {
	case err == nil:
		t.remember(key, &v)
	case errors.Is(err, kv.ErrNotFound):
		t.remember(key, nil)
	}
	return v, err
}

func (t *tracker) Set(ctx context.Context, key, value string) error {
	if err := t.Store.Set(ctx, key, value); err != nil {
		return err
	}
	t.remember(key, &value)
	return nil
}

func (t *tracker) Delete(ctx context.Context, key string) error {
	if err := t.Store.Delete(ctx, key); err != nil {
		return err
	}
	t.remember(key, nil)
	return nil
}

func (t *tracker) remember(key string, v *string) {
	t.mu.Lock()
	t.seen[key] = v
	t.mu.Unlock()
}

func (t *tracker) stale(ctx context.Context, key string) bool {
	t.mu.Lock()
	last, known := t.seen[key]
	t.mu.Unlock()
	if !known {
		return true
	}

	cur, err := t.Store.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return last != nil
	case err != nil:
		return true
	default:
		return last == nil || *last != cur
	}
}
