// Package state persists the task collection, background selection and user
// roster as three independent keys of a kv.Store.
//
// Loading never fails as a whole: an aggregate that cannot be read or decoded
// is logged and replaced by its default, and the other two still load.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/kv"
	"github.com/hay-kot/pear/internal/core/task"
)

// Storage keys.
const (
	KeyTasks      = "todos"
	KeyBackground = "background"
	KeyUsers      = "users"

	// Keys written by the original single-page app before the background
	// was stored as one record.
	LegacyKeyColor = "bgColor"
	LegacyKeyImage = "bgImage"
)

// Keys lists the keys owned by the codec.
var Keys = []string{KeyTasks, KeyBackground, KeyUsers}

// Snapshot holds the three persisted aggregates.
type Snapshot struct {
	Tasks      []task.Task      `json:"tasks"`
	Background background.State `json:"background"`
	Users      []string         `json:"users"`
}

// DefaultSnapshot is the first-run state.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Tasks:      []task.Task{},
		Background: background.State{Descriptor: background.Default},
		Users:      []string{},
	}
}

// Codec encodes and decodes aggregates to and from a kv.Store.
type Codec struct {
	store    *tracker
	logger   zerolog.Logger
	location *time.Location

	background *kv.JSON[background.State]
	users      *kv.JSON[[]string]

	mu            sync.Mutex
	legacyPending bool
}

// New creates a codec over store. Legacy due dates without a zone are read
// in the local time zone.
func New(store kv.Store, logger zerolog.Logger) *Codec {
	t := newTracker(store)
	return &Codec{
		store:      t,
		logger:     logger,
		location:   time.Local,
		background: kv.Key[background.State](t, KeyBackground),
		users:      kv.Key[[]string](t, KeyUsers),
	}
}

// Load reads all three aggregates. Failures are isolated per aggregate.
func (c *Codec) Load(ctx context.Context) Snapshot {
	snap := DefaultSnapshot()

	if tasks, err := c.LoadTasks(ctx); err != nil {
		c.logger.Warn().Err(err).Str("key", KeyTasks).Msg("discarding stored tasks")
	} else {
		snap.Tasks = tasks
	}

	if bg, err := c.LoadBackground(ctx); err != nil {
		c.logger.Warn().Err(err).Str("key", KeyBackground).Msg("discarding stored background")
	} else {
		snap.Background = bg
	}

	if users, err := c.LoadUsers(ctx); err != nil {
		c.logger.Warn().Err(err).Str("key", KeyUsers).Msg("discarding stored users")
	} else {
		snap.Users = users
	}

	return snap
}

// LoadTasks reads the task collection. A missing key yields an empty
// collection. Records that fail validation are skipped and logged.
func (c *Codec) LoadTasks(ctx context.Context) ([]task.Task, error) {
	raw, err := c.store.Get(ctx, KeyTasks)
	if errors.Is(err, kv.ErrNotFound) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, err
	}

	tasks, skipped, err := DecodeTasks([]byte(raw), c.location)
	if err != nil {
		return nil, &kv.DecodeError{Key: KeyTasks, Err: err}
	}
	for _, rerr := range skipped {
		c.logger.Warn().Err(rerr).Str("key", KeyTasks).Msg("skipping invalid task record")
	}
	return tasks, nil
}

// SaveTasks writes the task collection.
func (c *Codec) SaveTasks(ctx context.Context, tasks []task.Task) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, KeyTasks, string(data)); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// LoadUsers reads the user roster. Normalization (trim, dedupe) is left to
// the roster.
func (c *Codec) LoadUsers(ctx context.Context) ([]string, error) {
	users, err := c.users.Get(ctx)
	if errors.Is(err, kv.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []string{}
	}
	return users, nil
}

// SaveUsers writes the user roster.
func (c *Codec) SaveUsers(ctx context.Context, users []string) error {
	if users == nil {
		users = []string{}
	}
	if err := c.users.Set(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Stale reports whether the stored value of key differs from what this
// codec last read or wrote. It lets callers tell their own writes apart from
// changes made by another process.
func (c *Codec) Stale(ctx context.Context, key string) bool {
	return c.store.stale(ctx, key)
}
