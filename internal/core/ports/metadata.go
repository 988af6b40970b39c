package ports

import (
	"context"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// MetadataProvider fetches track metadata from an external catalog such as Spotify.
// Implementations return domain.ErrNotFound for unknown ids.
type MetadataProvider interface {
	GetTrackByID(ctx context.Context, id string) (domain.Track, error)
}
