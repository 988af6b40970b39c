// Package worker provides background processing for track-related jobs.
package worker

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/core/ports"
	"github.com/ewilliams-labs/jukebox/internal/metrics"
)

const (
	defaultBatchSize = 500
	batchTimeout     = 30 * time.Second
)

// Job asks the pool to write track metadata into the repository.
type Job struct {
	Source string
	Tracks []domain.Track
}

// Pool manages background workers for async jobs.
type Pool struct {
	repo      ports.TrackRepository
	jobs      chan Job
	wg        sync.WaitGroup
	workers   int
	batchSize int
	logger    zerolog.Logger

	indexed atomic.Int64
	failed  atomic.Int64

	mu      sync.RWMutex // guards stopped against sends on a closed queue
	stopped bool
}

// NewPool creates a worker pool with the given worker count, queue size and
// repository batch size.
func NewPool(repo ports.TrackRepository, workers, queueSize, batchSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &Pool{
		repo:      repo,
		jobs:      make(chan Job, queueSize),
		workers:   workers,
		batchSize: batchSize,
		logger:    zerolog.Nop(),
	}
}

// WithLogger sets the pool logger.
//
//nolint:gocritic // zerolog loggers are passed by value
func (p *Pool) WithLogger(l zerolog.Logger) *Pool {
	p.logger = l
	return p
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking. It reports false when the job was
// dropped because the queue is full or the pool is stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.logger.Warn().Str("source", job.Source).Msg("worker: pool stopped, dropping job")
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn().Str("source", job.Source).Int("tracks", len(job.Tracks)).Msg("worker: queue full, dropping job")
		return false
	}
}

// Indexed returns the number of tracks written so far.
func (p *Pool) Indexed() int64 { return p.indexed.Load() }

// Failed returns the number of tracks whose batch could not be written.
func (p *Pool) Failed() int64 { return p.failed.Load() }

func (p *Pool) processJob(job Job) {
	if len(job.Tracks) == 0 {
		return
	}

	start := time.Now()
	var written int
	for batch := range slices.Chunk(job.Tracks, p.batchSize) {
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		err := p.repo.SaveTracks(ctx, batch)
		cancel()
		if err != nil {
			p.failed.Add(int64(len(batch)))
			p.logger.Warn().Err(err).Str("source", job.Source).Int("batch", len(batch)).Msg("worker: failed to save batch")
			continue
		}
		written += len(batch)
		p.indexed.Add(int64(len(batch)))
		metrics.IndexedTracks.Add(float64(len(batch)))
	}

	p.logger.Info().
		Str("source", job.Source).
		Int("tracks", written).
		Int("skipped", len(job.Tracks)-written).
		Dur("took", time.Since(start)).
		Msg("worker: indexed tracks")
}
