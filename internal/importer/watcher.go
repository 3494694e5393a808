package importer

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates a loader's cached instances when their notebook files
// change on disk, so the next import observes fresh content. Events are
// debounced because editors tend to fire several writes per save.
type Watcher struct {
	mu       sync.Mutex
	loader   *Loader
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration
	lastSeen map[string]time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a Watcher bound to the given loader.
func NewWatcher(loader *Loader, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		loader:   loader,
		watcher:  fw,
		log:      log,
		debounce: 500 * time.Millisecond,
		lastSeen: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Add starts watching a directory for notebook changes.
func (w *Watcher) Add(dir string) error {
	return w.watcher.Add(dir)
}

// Start begins processing filesystem events. Non-blocking; events are
// handled in a goroutine until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.log.Warn("error closing file watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
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
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !RegisteredSuffix(filepath.Ext(event.Name)) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	now := time.Now()
	if last, ok := w.lastSeen[event.Name]; ok && now.Sub(last) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastSeen[event.Name] = now
	w.mu.Unlock()

	w.loader.Invalidate(event.Name)
	w.log.Debug("invalidated notebook instance",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()))
}
