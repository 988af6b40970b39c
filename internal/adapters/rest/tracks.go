package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/logging"
)

const (
	defaultDuration = "3:30"
	maxSearchLimit  = 10
)

type songDetailsRequest struct {
	TrackIDs []string `json:"track_ids" validate:"required,min=1,max=100,dive,required,max=64"`
}

// songDetails is the display shape shared by song_details and search_songs.
type songDetails struct {
	TrackID  string `json:"track_id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration string `json:"duration"`
	Image    string `json:"image"`
}

func toSongDetails(t domain.Track) songDetails {
	return songDetails{
		TrackID:  t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Duration: formatDuration(t.DurationMs),
		Image:    t.CoverURL,
	}
}

func toSongDetailsList(tracks []domain.Track) []songDetails {
	out := make([]songDetails, len(tracks))
	for i, t := range tracks {
		out[i] = toSongDetails(t)
	}
	return out
}

// formatDuration renders m:ss, falling back to a typical song length when unknown.
func formatDuration(ms int) string {
	if ms <= 0 {
		return defaultDuration
	}
	return fmt.Sprintf("%d:%02d", ms/60000, (ms%60000)/1000)
}

// SongDetails handles POST /api/song_details
func (h *Handler) SongDetails(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req songDetailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.TrackIDs) == 0 {
		writeErrorWithCode(w, http.StatusBadRequest, "No track_ids provided", errCodeInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, validationMessage(err), errCodeInvalidInput)
		return
	}

	tracks, err := h.svc.SongDetails(r.Context(), req.TrackIDs)
	if err != nil {
		if !isClientError(err) {
			l := logging.Ctx(r.Context(), h.logger)
			l.Error().Err(err).Int("ids", len(req.TrackIDs)).Msg("song details failed")
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSongDetailsList(tracks))
}

// SearchSongs handles GET /api/search_songs?q=
func (h *Handler) SearchSongs(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []songDetails{})
		return
	}

	tracks, err := h.svc.SearchSongs(r.Context(), query, maxSearchLimit)
	if err != nil {
		l := logging.Ctx(r.Context(), h.logger)
		l.Error().Err(err).Str("q", query).Msg("search failed")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSongDetailsList(tracks))
}
