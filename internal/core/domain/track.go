package domain

import "strings"

// Track represents a musical track in the domain layer.
// Tracks loaded from a dataset are shared between goroutines and must not be mutated.
type Track struct {
	ID         string
	Title      string
	Artist     string   // display form, artists joined by ", "
	Artists    []string // individual artist names in credit order
	Album      string   // optional
	Popularity float64
	DurationMs int    // optional
	CoverURL   string // optional, filled by metadata providers
	Features   []float64
}

// NewTrack builds a Track and derives the display artist from the credited artists.
func NewTrack(id, title string, artists []string, album string) Track {
	return Track{
		ID:      id,
		Title:   title,
		Artist:  JoinArtists(artists),
		Artists: artists,
		Album:   album,
	}
}

// JoinArtists flattens artist credits into the display form.
func JoinArtists(artists []string) string {
	return strings.Join(artists, ", ")
}

// Recommendation is a single ranked result produced by a recommender.
type Recommendation struct {
	TrackID string  `json:"track_id"`
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Album   string  `json:"album"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

// CatalogInfo describes the dataset currently served.
type CatalogInfo struct {
	Tracks   int    `json:"tracks"`
	Source   string `json:"source"`
	LoadedAt string `json:"loaded_at"`
}
