package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/core/ports"
)

// MaxSearchResults caps SearchSongs regardless of the requested limit.
const MaxSearchResults = 10

// Orchestrator coordinates the recommenders, the metadata store and the
// optional external metadata provider.
type Orchestrator struct {
	recommenders map[string]ports.Recommender
	repo         ports.TrackRepository
	metadata     ports.MetadataProvider // nil when no provider is configured
	status       ports.CatalogStatus
	logger       zerolog.Logger
}

// NewOrchestrator constructs an Orchestrator. metadata may be nil.
func NewOrchestrator(repo ports.TrackRepository, metadata ports.MetadataProvider, status ports.CatalogStatus, recommenders ...ports.Recommender) *Orchestrator {
	o := &Orchestrator{
		recommenders: make(map[string]ports.Recommender, len(recommenders)),
		repo:         repo,
		metadata:     metadata,
		status:       status,
		logger:       zerolog.Nop(),
	}
	for _, r := range recommenders {
		o.recommenders[r.Mode()] = r
	}
	return o
}

// WithLogger sets the logger used for degraded enrichment paths.
//
//nolint:gocritic // zerolog loggers are passed by value
func (o *Orchestrator) WithLogger(l zerolog.Logger) *Orchestrator {
	o.logger = l
	return o
}

// Recommend dispatches names to the recommender registered for mode.
func (o *Orchestrator) Recommend(ctx context.Context, mode string, names []string) ([]domain.Recommendation, error) {
	r, ok := o.recommenders[mode]
	if !ok {
		return nil, domain.InvalidInputError{Reason: "invalid model type"}
	}
	recs, err := r.Recommend(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("service: %s recommendation: %w", mode, err)
	}
	return recs, nil
}

// SongDetails returns metadata for ids in request order, silently omitting
// ids nobody knows. Tracks missing from the store, or stored without cover
// art, are looked up with the metadata provider and cached back.
func (o *Orchestrator) SongDetails(ctx context.Context, ids []string) ([]domain.Track, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, domain.InvalidInputError{Reason: "no track_ids provided"}
	}

	stored, err := o.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load tracks: %w", err)
	}
	byID := make(map[string]domain.Track, len(stored))
	for _, t := range stored {
		byID[t.ID] = t
	}

	if o.metadata != nil {
		fetched := o.enrich(ctx, ids, byID)
		if len(fetched) > 0 {
			if err := o.repo.SaveTracks(ctx, fetched); err != nil {
				o.logger.Warn().Err(err).Int("tracks", len(fetched)).Msg("failed to cache fetched track metadata")
			}
		}
	}

	out := make([]domain.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// enrich fills byID from the metadata provider and returns what it fetched.
func (o *Orchestrator) enrich(ctx context.Context, ids []string, byID map[string]domain.Track) []domain.Track {
	var fetched []domain.Track
	for _, id := range ids {
		if t, ok := byID[id]; ok && t.CoverURL != "" {
			continue
		}
		t, err := o.metadata.GetTrackByID(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				o.logger.Warn().Err(err).Str("track_id", id).Msg("metadata lookup failed")
			}
			continue
		}
		if prev, ok := byID[id]; ok {
			t = mergeTrack(prev, t)
		}
		byID[id] = t
		fetched = append(fetched, t)
	}
	return fetched
}

// mergeTrack keeps stored values the provider left blank.
func mergeTrack(stored, remote domain.Track) domain.Track {
	if remote.Title == "" {
		remote.Title = stored.Title
	}
	if len(remote.Artists) == 0 {
		remote.Artists = stored.Artists
		remote.Artist = stored.Artist
	}
	if remote.Album == "" {
		remote.Album = stored.Album
	}
	if remote.DurationMs == 0 {
		remote.DurationMs = stored.DurationMs
	}
	if remote.Popularity == 0 {
		remote.Popularity = stored.Popularity
	}
	return remote
}

// SearchSongs returns tracks whose title or an artist starts with query,
// most popular first. A blank query matches nothing.
func (o *Orchestrator) SearchSongs(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Track{}, nil
	}
	if limit <= 0 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}
	tracks, err := o.repo.SearchByPrefix(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("service: search failed: %w", err)
	}
	return tracks, nil
}

// Status reports the dataset currently served.
func (o *Orchestrator) Status() domain.CatalogInfo {
	if o.status == nil {
		return domain.CatalogInfo{}
	}
	return o.status.Info()
}

// Modes lists the registered recommendation modes in sorted order.
func (o *Orchestrator) Modes() []string {
	modes := make([]string, 0, len(o.recommenders))
	for m := range o.recommenders {
		modes = append(modes, m)
	}
	slices.Sort(modes)
	return modes
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
