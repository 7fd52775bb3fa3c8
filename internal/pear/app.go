// Package pear wires the task store, background selector and user roster to
// persistent storage and to the presentation layer.
package pear

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/internal/core/reorder"
	"github.com/hay-kot/pear/internal/core/roster"
	"github.com/hay-kot/pear/internal/core/state"
	"github.com/hay-kot/pear/internal/core/task"
)

// ErrNotLoaded is returned by operations that need hydrated state.
var ErrNotLoaded = errors.New("state not loaded")

// Feedback is notified when a task changes completion. The presentation
// layer uses it for sounds, animations or status messages.
type Feedback interface {
	Completed(t task.Task)
	Reopened(t task.Task)
}

// NopFeedback ignores all notifications.
type NopFeedback struct{}

func (NopFeedback) Completed(task.Task) {}
func (NopFeedback) Reopened(task.Task)  {}

// Options configures an App. Zero values pick defaults.
type Options struct {
	Logger      zerolog.Logger
	Feedback    Feedback
	IDFunc      task.IDFunc
	Clock       func() time.Time
	DefaultType task.Type
}

type aggregate uint8

const (
	aggTasks aggregate = 1 << iota
	aggBackground
	aggUsers
)

// App owns the in-memory aggregates. Every intent mutates memory first and
// then persists the touched aggregate. Persistence is best-effort: failures
// are logged and remembered, never undone.
//
// Nothing is written before Load completes, so defaults cannot clobber data
// that has not been read yet.
type App struct {
	codec       *state.Codec
	log         zerolog.Logger
	feedback    Feedback
	now         func() time.Time
	defaultType task.Type

	mu       sync.Mutex
	loaded   bool
	tasks    *task.Store
	bg       *background.Selector
	users    *roster.Roster
	drag     reorder.Engine
	persist  error
	subs     map[int]func(Snapshot)
	nextSub  int
	watchers sync.WaitGroup
}

// New creates an App backed by codec. Call Load before using it.
func New(codec *state.Codec, opts Options) *App {
	if opts.Feedback == nil {
		opts.Feedback = NopFeedback{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if !opts.DefaultType.IsValid() {
		opts.DefaultType = task.DefaultType
	}

	return &App{
		codec:       codec,
		log:         logging.Sub(opts.Logger, "app"),
		feedback:    opts.Feedback,
		now:         opts.Clock,
		defaultType: opts.DefaultType,
		tasks:       task.NewStore(opts.IDFunc),
		bg:          background.NewSelector(),
		users:       roster.New(),
		subs:        make(map[int]func(Snapshot)),
	}
}

// Load hydrates all aggregates from storage and opens the save gate. Load
// never fails; unreadable aggregates start from their defaults.
func (a *App) Load(ctx context.Context) {
	snap := a.codec.Load(ctx)

	a.mu.Lock()
	if dropped := a.tasks.Replace(snap.Tasks); dropped > 0 {
		a.log.Warn().Int("dropped", dropped).Msg("dropped tasks with duplicate ids")
	}
	a.bg.Restore(snap.Background)
	a.users.Replace(snap.Users)
	a.drag.Cancel()
	a.loaded = true

	if a.codec.LegacyPending() {
		a.persistLocked(ctx, aggBackground)
	}

	out := a.snapshotLocked()
	subs := a.subscribersLocked()
	a.mu.Unlock()

	a.log.Debug().Int("tasks", len(out.Tasks)).Int("users", len(out.Users)).Msg("state loaded")
	publish(subs, out)
}

// Loaded reports whether Load has completed.
func (a *App) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// PersistErr returns the most recent persistence failure, if any.
func (a *App) PersistErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.persist
}

// Now returns the current time from the App's clock.
func (a *App) Now() time.Time {
	return a.now()
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// SetFeedback replaces the Feedback port. A nil f disables feedback.
func (a *App) SetFeedback(f Feedback) {
	if f == nil {
		f = NopFeedback{}
	}
	a.mu.Lock()
	a.feedback = f
	a.mu.Unlock()
}

// ResolveTask finds a task by id or unique id prefix.
func (a *App) ResolveTask(ref string) (task.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tasks.Resolve(ref)
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// synchronously on the goroutine that made the change and must not call back
// into mutating App methods. The returned func unsubscribes.
func (a *App) Subscribe(fn func(Snapshot)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// update runs fn under the lock. When fn reports a change the touched
// aggregates are persisted and subscribers receive the new snapshot.
func (a *App) update(ctx context.Context, agg aggregate, fn func() bool) bool {
	a.mu.Lock()
	if !fn() {
		a.mu.Unlock()
		return false
	}
	a.persistLocked(ctx, agg)
	snap := a.snapshotLocked()
	subs := a.subscribersLocked()
	a.mu.Unlock()

	publish(subs, snap)
	return true
}

func (a *App) persistLocked(ctx context.Context, agg aggregate) {
	if !a.loaded {
		a.log.Debug().Msg("skipping save before load")
		return
	}

	save := func(name string, fn func() error) {
		if err := fn(); err != nil {
			a.log.Error().Err(err).Str("aggregate", name).Msg("failed to persist state")
			a.persist = fmt.Errorf("persist %s: %w", name, err)
		}
	}

	if agg&aggTasks != 0 {
		save("tasks", func() error { return a.codec.SaveTasks(ctx, a.tasks.List()) })
	}
	if agg&aggBackground != 0 {
		save("background", func() error { return a.codec.SaveBackground(ctx, a.bg.State()) })
	}
	if agg&aggUsers != 0 {
		save("users", func() error { return a.codec.SaveUsers(ctx, a.users.Names()) })
	}
}

func (a *App) snapshotLocked() Snapshot {
	tasks := a.tasks.List()
	bg := a.bg.State()
	return Snapshot{
		Tasks:      tasks,
		Background: bg,
		Users:      a.users.Names(),
		Remaining:  task.Remaining(tasks),
		Dark:       bg.Dark(),
		Drag:       a.drag.State(),
		Loaded:     a.loaded,
	}
}

func (a *App) subscribersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(a.subs))
	for i := 0; i < a.nextSub; i++ {
		if fn, ok := a.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func publish(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
