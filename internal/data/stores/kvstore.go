package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/pear/internal/core/kv"
	"github.com/hay-kot/pear/internal/data/db"
	"github.com/rs/zerolog"
)

// KVStore implements kv.Store on SQLite.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var _ kv.Store = (*KVStore)(nil)

// NewKVStore creates a SQLite-backed store.
func NewKVStore(database *db.DB) *KVStore {
	return &KVStore{db: database, now: time.Now}
}

// OpenKVStore opens the database in dataDir and wraps it in a KVStore. A
// corrupted database file is moved aside and replaced by an empty one.
func OpenKVStore(dataDir string, opts db.OpenOptions, logger zerolog.Logger) (*KVStore, *db.DB, error) {
	database, err := db.Open(dataDir, opts)
	if err != nil && IsCorruptionError(err) {
		backup, rerr := RecoverFromCorruption(dataDir)
		if rerr != nil {
			return nil, nil, fmt.Errorf("recover corrupted database: %w", rerr)
		}
		logger.Warn().Err(err).Str("backup", backup).Msg("database corrupted, starting fresh")
		database, err = db.Open(dataDir, opts)
	}
	if err != nil {
		return nil, nil, err
	}
	return NewKVStore(database), database, nil
}

// Get returns the stored value or an error wrapping kv.ErrNotFound.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}
	return row.Value, nil
}

// Set upserts a value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.db.Queries().KVSet(ctx, key, value, s.now().UnixNano()); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// ListKeys returns all keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.db.Queries().KVListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// UpdatedAt returns when key was last written.
func (s *KVStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("kv updated at %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("kv updated at %q: %w", key, err)
	}
	return time.Unix(0, row.UpdatedAt), nil
}
