package spotify

import (
	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a clean Domain track.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		if a.Name != "" {
			artistNames = append(artistNames, a.Name)
		}
	}

	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	dt := domain.NewTrack(st.ID, st.Name, artistNames, st.Album.Name)
	dt.CoverURL = coverURL
	dt.DurationMs = st.DurationMs
	dt.Popularity = float64(st.Popularity)
	return dt
}
