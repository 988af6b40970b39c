// Package dataset owns the catalog currently served and replaces it when the
// source file changes.
package dataset

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ewilliams-labs/jukebox/internal/catalog"
	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/features"
	"github.com/ewilliams-labs/jukebox/internal/metrics"
)

// Options describe where the dataset lives and how it is embedded.
type Options struct {
	Path          string
	Columns       []string
	Normalization features.Normalization
}

// Snapshot is a loaded catalog with its fitted feature space. Snapshots are
// never mutated; a reload produces a new one.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Space    *features.Space
	Source   string
	LoadedAt time.Time
}

// Load reads the dataset at opts.Path and fits its feature space.
func Load(opts Options) (*Snapshot, error) {
	c, err := catalog.LoadFile(opts.Path, catalog.DefaultSchema().WithFeatures(opts.Columns))
	if err != nil {
		return nil, err
	}
	space, err := features.Fit(c, opts.Normalization)
	if err != nil {
		return nil, domain.DatasetLoadError{Source: opts.Path, Reason: "cannot fit features", Err: err}
	}
	return &Snapshot{
		Catalog:  c,
		Space:    space,
		Source:   opts.Path,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// Store publishes the current snapshot to concurrent readers.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store serving snap, which must not be nil.
func NewStore(snap *Snapshot) *Store {
	s := &Store{}
	s.Swap(snap)
	return s
}

// Current returns the snapshot in service. Callers should read it once per
// request so a concurrent reload cannot mix two catalogs.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap replaces the served snapshot and returns the previous one.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	old := s.current.Swap(snap)
	metrics.CatalogTracks.Set(float64(snap.Catalog.Len()))
	return old
}

// Reload loads opts and swaps it in. On failure the current snapshot stays.
func (s *Store) Reload(opts Options) (*Snapshot, error) {
	snap, err := Load(opts)
	if err != nil {
		metrics.DatasetReloads.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("dataset: reload: %w", err)
	}
	s.Swap(snap)
	metrics.DatasetReloads.WithLabelValues(metrics.OutcomeOK).Inc()
	return snap, nil
}

// Info summarises the served snapshot.
func (s *Store) Info() domain.CatalogInfo {
	snap := s.Current()
	if snap == nil {
		return domain.CatalogInfo{}
	}
	return domain.CatalogInfo{
		Tracks:   snap.Catalog.Len(),
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt.Format(time.RFC3339),
	}
}
