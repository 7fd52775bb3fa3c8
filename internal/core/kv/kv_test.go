package kv_test

import (
	"context"
	"testing"

	"github.com/hay-kot/pear/internal/core/kv"
	"github.com/hay-kot/pear/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	key := kv.Key[payload](store, "thing")
	require.NoError(t, key.Set(ctx, payload{Name: "hello", Value: 42}))

	got, err := key.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "hello", Value: 42}, got)

	raw, err := store.Get(ctx, "thing")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"hello","value":42}`, raw)
}

func TestJSON_Missing(t *testing.T) {
	ctx := context.Background()
	key := kv.Key[[]string](memory.New(), "users")

	_, err := key.Get(ctx)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestJSON_Malformed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, "users", "{not json"))

	_, err := kv.Key[[]string](store, "users").Get(ctx)

	var decodeErr *kv.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "users", decodeErr.Key)
}

func TestHas(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	has, err := kv.Has(ctx, store, "k")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Set(ctx, "k", "v"))
	has, err = kv.Has(ctx, store, "k")
	require.NoError(t, err)
	assert.True(t, has)
}
