package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the catalog file watcher.
type WatcherConfig struct {
	// Path is the catalog file to watch.
	Path string

	// DebounceInterval is the time to wait after a change before reloading,
	// preventing reload storms from editors that write in bursts.
	// Default: 100ms
	DebounceInterval time.Duration
}

// Watcher observes a catalog file and reloads it on change. Successfully
// loaded catalogs are handed to the onReload callback; load failures are
// logged and the previous catalog stays active.
type Watcher struct {
	watcher *fsnotify.Watcher
	config  WatcherConfig
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a catalog file watcher.
func NewWatcher(config WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("catalog watcher: path is required")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fw,
		config:  config,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Watch blocks, reloading the catalog on file changes until the context is
// cancelled or Stop is called. Editors commonly replace files via rename, so
// the parent directory is watched rather than the file itself.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Catalog)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("catalog watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("catalog watcher started",
		"path", w.config.Path,
		"debounce", w.config.DebounceInterval,
	)

	target := filepath.Clean(w.config.Path)
	var debounce *time.Timer
	reload := func() {
		c, err := Load(w.config.Path)
		if err != nil {
			w.logger.Error("catalog reload failed, keeping previous catalog",
				"path", w.config.Path,
				"error", err,
			)
			return
		}
		w.logger.Info("catalog reloaded",
			"version", c.Version,
			"questions", c.QuestionCount(),
			"total_weight", c.TotalWeight(),
		)
		onReload(c)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.config.DebounceInterval, reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("catalog watcher error", "error", err)
		}
	}
}

// Stop terminates the watcher and releases its resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}
