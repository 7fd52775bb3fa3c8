package pear

import (
	"context"

	"github.com/hay-kot/pear/internal/core/state"
	"github.com/hay-kot/pear/internal/store/jsonfile"
)

// Follow applies storage changes made by other processes until ctx is done
// or events is closed. It returns immediately; Wait blocks until it stops.
func (a *App) Follow(ctx context.Context, events <-chan jsonfile.KeyEvent) {
	a.watchers.Add(1)
	go func() {
		defer a.watchers.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				a.Reload(ctx, ev.Key)
			}
		}
	}()
}

// Wait blocks until all Follow loops have returned.
func (a *App) Wait() {
	a.watchers.Wait()
}

// Reload re-reads one aggregate when its stored value differs from what the
// App last wrote. Unknown keys and unchanged values are ignored. It reports
// whether state changed.
func (a *App) Reload(ctx context.Context, key string) bool {
	a.mu.Lock()
	if !a.loaded || !a.codec.Stale(ctx, key) {
		a.mu.Unlock()
		return false
	}

	log := a.log.With().Str("key", key).Logger()

	switch key {
	case state.KeyTasks:
		tasks, err := a.codec.LoadTasks(ctx)
		if err != nil {
			a.mu.Unlock()
			log.Warn().Err(err).Msg("ignoring external task change")
			return false
		}
		a.tasks.Replace(tasks)
		a.drag.Cancel()
	case state.KeyBackground:
		bg, err := a.codec.LoadBackground(ctx)
		if err != nil {
			a.mu.Unlock()
			log.Warn().Err(err).Msg("ignoring external background change")
			return false
		}
		a.bg.Restore(bg)
	case state.KeyUsers:
		users, err := a.codec.LoadUsers(ctx)
		if err != nil {
			a.mu.Unlock()
			log.Warn().Err(err).Msg("ignoring external user change")
			return false
		}
		a.users.Replace(users)
	default:
		a.mu.Unlock()
		return false
	}

	snap := a.snapshotLocked()
	subs := a.subscribersLocked()
	a.mu.Unlock()

	log.Debug().Msg("reloaded after external change")
	publish(subs, snap)
	return true
}
