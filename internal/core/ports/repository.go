package ports

import (
	"context"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// TrackRepository stores display metadata for catalog tracks.
type TrackRepository interface {
	SaveTracks(ctx context.Context, tracks []domain.Track) error
	GetByIDs(ctx context.Context, ids []string) ([]domain.Track, error)
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Track, error)
}
