package ports

import (
	"context"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// Recommender turns a set of seed track names into ranked recommendations.
type Recommender interface {
	Mode() string
	Recommend(ctx context.Context, names []string) ([]domain.Recommendation, error)
}

// CatalogStatus reports which dataset is currently served.
type CatalogStatus interface {
	Info() domain.CatalogInfo
}
