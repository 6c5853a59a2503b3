package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

// DefaultWatchInterval is used when the configured interval is not positive.
const DefaultWatchInterval = 30 * time.Second

// Loader re-reads persisted state. Implemented by store.Service.
type Loader interface {
	Load(ctx context.Context) error
}

// DocumentWatcher periodically re-reads the document so that /infra and the
// gauges follow writes made by other processes sharing the backend.
type DocumentWatcher struct {
	loader   Loader
	logger   logger.Logger
	interval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewDocumentWatcher creates a watcher. It does nothing until Start.
func NewDocumentWatcher(loader Loader, log logger.Logger, interval time.Duration) *DocumentWatcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &DocumentWatcher{
		loader:   loader,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one reload immediately, then one per interval until Stop or ctx is done.
func (w *DocumentWatcher) Start(ctx context.Context) {
	w.Reload(ctx)

	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Reload(ctx)
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (w *DocumentWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
}

// Reload re-reads the document once. Failures are logged and retried on the next tick.
func (w *DocumentWatcher) Reload(ctx context.Context) {
	if err := w.loader.Load(ctx); err != nil {
		w.logger.Warn("document reload failed", logger.Error(err))
		return
	}
	w.logger.Debug("document reloaded")
}
