// Package recommend ranks catalog tracks against a small set of seed songs.
package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/dataset"
	"github.com/ewilliams-labs/jukebox/internal/metrics"
)

const (
	ModeSong     = "song"
	ModePlaylist = "playlist"
)

// ctxCheckEvery bounds how many candidates are scored between cancellation checks.
const ctxCheckEvery = 4096

// SnapshotSource yields the dataset snapshot to recommend from.
type SnapshotSource interface {
	Current() *dataset.Snapshot
}

type candidate struct {
	pos        int
	score      float64
	popularity float64
}

// Recommender is safe for concurrent use. Each call works on the snapshot
// current when it started.
type Recommender struct {
	source SnapshotSource
	opts   options
	policy policy
}

// NewSongRecommender ranks candidates by similarity to the centroid of the seeds.
func NewSongRecommender(source SnapshotSource, opts ...Option) *Recommender {
	o := applyOptions(opts)
	return &Recommender{
		source: source,
		opts:   o,
		policy: policy{
			mode:   ModeSong,
			score:  centroidScorer(o.similarity),
			choose: truncate,
		},
	}
}

// NewPlaylistRecommender favours candidates close to any single seed and
// limits how many results one artist may take.
func NewPlaylistRecommender(source SnapshotSource, opts ...Option) *Recommender {
	o := applyOptions(opts)
	return &Recommender{
		source: source,
		opts:   o,
		policy: policy{
			mode:   ModePlaylist,
			score:  nearestSeedScorer(o.similarity, o.nearestWeight),
			choose: artistCapped(o.artistCap),
		},
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (r *Recommender) Mode() string { return r.policy.mode }

// Recommend resolves names to seed tracks and returns up to the configured
// limit of non-seed tracks, best first. Unresolved names are ignored unless
// none resolve, which yields domain.NoMatchError.
func (r *Recommender) Recommend(ctx context.Context, names []string) ([]domain.Recommendation, error) {
	start := time.Now()
	recs, err := r.recommend(ctx, names)

	metrics.RecommendRequests.WithLabelValues(r.policy.mode, outcome(err)).Inc()
	metrics.RecommendDuration.WithLabelValues(r.policy.mode).Observe(time.Since(start).Seconds())
	return recs, err
}

func (r *Recommender) recommend(ctx context.Context, names []string) ([]domain.Recommendation, error) {
	if err := r.validate(names); err != nil {
		return nil, err
	}

	snap := r.source.Current()
	if snap == nil {
		return nil, fmt.Errorf("recommend: no dataset loaded")
	}

	seeds, unresolved := resolveSeeds(snap, names)
	if len(seeds) == 0 {
		err := domain.NoMatchError{Names: names}
		r.opts.logger.Debug().Str("mode", r.policy.mode).Msg(err.Detail())
		return nil, err
	}
	if len(unresolved) > 0 {
		r.opts.logger.Debug().
			Str("mode", r.policy.mode).
			Strs("unresolved", unresolved).
			Int("seeds", len(seeds)).
			Msg("some seed names did not resolve")
	}

	seedVectors := make([][]float64, len(seeds))
	exclude := make(map[int]struct{}, len(seeds))
	for i, pos := range seeds {
		seedVectors[i] = snap.Space.Vector(pos)
		exclude[pos] = struct{}{}
	}
	score := r.policy.score(seedVectors)

	ranked := make([]candidate, 0, snap.Catalog.Len()-len(seeds))
	n := 0
	for pos, track := range snap.Catalog.AllExcept(exclude) {
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("recommend: %w", err)
			}
		}
		ranked = append(ranked, candidate{
			pos:        pos,
			score:      score(snap.Space.Vector(pos)),
			popularity: track.Popularity,
		})
	}
	slices.SortFunc(ranked, compareCandidates)

	chosen := r.policy.choose(snap.Catalog, ranked, r.opts.limit)
	recs := make([]domain.Recommendation, len(chosen))
	for i, c := range chosen {
		t := snap.Catalog.At(c.pos)
		recs[i] = domain.Recommendation{
			TrackID: t.ID,
			Title:   t.Title,
			Artist:  t.Artist,
			Album:   t.Album,
			Score:   c.score,
			Rank:    i + 1,
		}
	}
	return recs, nil
}

func (r *Recommender) validate(names []string) error {
	if len(names) == 0 {
		return domain.InvalidInputError{Reason: "no songs provided"}
	}
	if len(names) > r.opts.maxSeeds {
		return domain.InvalidInputError{Reason: fmt.Sprintf("at most %d songs may be provided", r.opts.maxSeeds)}
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return domain.InvalidInputError{Reason: "song names must not be blank"}
		}
	}
	return nil
}

// resolveSeeds returns the distinct catalog positions named, in request order.
func resolveSeeds(snap *dataset.Snapshot, names []string) (seeds []int, unresolved []string) {
	seen := make(map[int]struct{}, len(names))
	for _, name := range names {
		pos, ok := snap.Catalog.ResolveIndex(name)
		if !ok {
			unresolved = append(unresolved, name)
			continue
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		seeds = append(seeds, pos)
	}
	return seeds, unresolved
}

// compareCandidates orders by score desc, popularity desc, then catalog position.
func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.popularity, a.popularity); c != 0 {
		return c
	}
	return cmp.Compare(a.pos, b.pos)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrNoMatch):
		return metrics.OutcomeNoMatch
	default:
		return metrics.OutcomeError
	}
}
