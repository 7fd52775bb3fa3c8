package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/pear/internal/core/kv"
)

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "data"))

	_, err := s.Get(ctx, "todos")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "todos", `[{"id":"1"}]`))
	got, err := s.Get(ctx, "todos")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, got)

	require.NoError(t, s.Set(ctx, "todos", `[]`))
	got, err = s.Get(ctx, "todos")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())

	require.NoError(t, s.Set(ctx, "bgColor", "#FFFFFF"))
	require.NoError(t, s.Delete(ctx, "bgColor"))
	require.NoError(t, s.Delete(ctx, "bgColor"), "deleting a missing key is not an error")

	_, err := s.Get(ctx, "bgColor")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_ListKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	keys, err := New(filepath.Join(dir, "missing")).ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, k := range []string{"users", "todos", "a/b"} {
		require.NoError(t, s.Set(ctx, k, "1"))
	}
	// foreign and temp files are not keys
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0o644))

	keys, err = s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "todos", "users"}, keys)
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	for range 5 {
		require.NoError(t, s.Set(ctx, "todos", "[]"))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "todos.json", entries[0].Name())
}

func TestKeyFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		wantKey string
		wantOK  bool
	}{
		{"todos.json", "todos", true},
		{"a%2Fb.json", "a/b", true},
		{".json", "", false},
		{"todos.json.tmp", "", false},
		{".tmp-todos.json", "", false},
		{"readme.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := KeyFromFilename(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
