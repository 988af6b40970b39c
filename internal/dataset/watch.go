package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a Store when its dataset file changes on disk.
type Watcher struct {
	store    *Store
	opts     Options
	debounce time.Duration
	logger   zerolog.Logger

	// OnReload, when set, runs after every successful swap.
	OnReload func(*Snapshot)
}

// NewWatcher builds a watcher for opts.Path.
//
//nolint:gocritic // zerolog loggers are passed by value
func NewWatcher(store *Store, opts Options, debounce time.Duration, logger zerolog.Logger) *Watcher {
	return &Watcher{
		store:    store,
		opts:     opts,
		debounce: debounce,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. The parent directory is watched so that
// editors which replace the file by rename are still noticed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("dataset: create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(w.opts.Path)
	if err != nil {
		return fmt.Errorf("dataset: resolve %s: %w", w.opts.Path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("dataset: watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDatasetEvent(event, target) {
				continue
			}
			if !pending {
				timer.Reset(w.debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("dataset watch error")
		case <-timer.C:
			pending = false
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	start := time.Now()
	snap, err := w.store.Reload(w.opts)
	if err != nil {
		w.logger.Error().Err(err).Str("path", w.opts.Path).Msg("dataset reload failed, keeping previous catalog")
		return
	}
	w.logger.Info().
		Int("tracks", snap.Catalog.Len()).
		Int("skipped", snap.Catalog.Skipped()).
		Dur("took", time.Since(start)).
		Msg("dataset reloaded")
	if w.OnReload != nil {
		w.OnReload(snap)
	}
}

func isDatasetEvent(event fsnotify.Event, target string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == target
}
