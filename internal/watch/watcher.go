// Package watch re-runs a job whenever a parameters file changes.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temporary file over the original are
// still seen. Bursts of events are coalesced by a debounce timer, and runs
// never overlap: changes made while a run is in progress trigger exactly one
// further run once it finishes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/swga/internal/ports"
)

// Config holds configuration options for the watcher.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before running.
	// Default: 500 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 500 * time.Millisecond}
}

// Job is the work repeated on every change.
type Job func(ctx context.Context) error

// Watcher watches a single file.
type Watcher struct {
	path   string
	delay  time.Duration
	logger ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
	trigger  chan struct{}
}

// New creates a watcher for path.
func New(path string, cfg Config, logger ports.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	return &Watcher{
		path:    filepath.Clean(path),
		delay:   cfg.DebounceDelay,
		logger:  logger,
		trigger: make(chan struct{}, 1),
	}
}

// Run calls job once, then again after every debounced change to the file,
// until ctx is cancelled. Job failures are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context, job Job) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.pump(ctx, fw)
	}()
	defer func() {
		cancel()
		fw.Close()
		wg.Wait()
		w.stopTimer()
	}()

	w.logger.Info("watching parameters", ports.String("path", w.path))
	w.runJob(ctx, job)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.trigger:
			w.logger.Info("parameters changed, re-running", ports.String("path", w.path))
			w.runJob(ctx, job)
		}
	}
}

func (w *Watcher) runJob(ctx context.Context, job Job) {
	if err := job(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("run failed", ports.Err(err))
	}
}

// pump turns file events into debounced triggers.
func (w *Watcher) pump(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.debounceTrigger()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) debounceTrigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}
