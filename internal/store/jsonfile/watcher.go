package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 100
)

// KeyEvent reports that the file backing Key was written, replaced or
// removed.
type KeyEvent struct {
	Key       string
	Removed   bool
	Timestamp time.Time
}

// Watcher reports key files changed in a store directory. Bursts of events
// for one key (temp file, rename, chmod) collapse into a single KeyEvent.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	mu          sync.Mutex
	subscribers []chan KeyEvent
	debounce    map[string]*time.Timer
	removed     map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching dir. The directory is created if it doesn't
// exist.
func NewWatcher(dir string, logger zerolog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		watcher:  fw,
		logger:   logger,
		debounce: make(map[string]*time.Timer),
		removed:  make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Watch returns a channel of key events. The channel is closed when ctx is
// done or the watcher is closed. Events are dropped for slow readers.
func (w *Watcher) Watch(ctx context.Context) <-chan KeyEvent {
	ch := make(chan KeyEvent, eventBufferSize)

	w.mu.Lock()
	w.subscribers = append(w.subscribers, ch)
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.unsubscribe(ch)
		case <-w.ctx.Done():
		}
	}()

	return ch
}

// Close stops watching and closes all subscriber channels.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	for _, timer := range w.debounce {
		timer.Stop()
	}
	for _, ch := range w.subscribers {
		close(ch)
	}
	w.subscribers = nil
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) unsubscribe(ch chan KeyEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("dir", w.dir).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	key, ok := KeyFromFilename(filepath.Base(event.Name))
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// A rename onto the key file arrives as Create; a rename away or an unlink
	// as Rename/Remove. The last one within the debounce window wins.
	w.removed[key] = event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)

	if timer, exists := w.debounce[key]; exists {
		timer.Stop()
	}
	w.debounce[key] = time.AfterFunc(debounceDelay, func() {
		w.notify(key)
	})
}

func (w *Watcher) notify(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	event := KeyEvent{
		Key:       key,
		Removed:   w.removed[key],
		Timestamp: time.Now(),
	}
	delete(w.debounce, key)
	delete(w.removed, key)

	for _, ch := range w.subscribers {
		select {
		case ch <- event:
		default:
			w.logger.Debug().Str("key", key).Msg("dropping key event for slow subscriber")
		}
	}
}
