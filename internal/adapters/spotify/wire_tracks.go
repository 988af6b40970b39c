package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// GetTrackByID fetches display metadata for a Spotify track id.
func (c *Client) GetTrackByID(ctx context.Context, id string) (domain.Track, error) {
	if id == "" {
		return domain.Track{}, fmt.Errorf("spotify adapter: empty track id: %w", domain.ErrNotFound)
	}

	trackURL := fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return domain.Track{}, fmt.Errorf("spotify adapter: failed to create track request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return domain.Track{}, fmt.Errorf("spotify adapter: track request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		// Spotify answers 400 for ids that are not valid base62
		return domain.Track{}, fmt.Errorf("spotify adapter: track %s: %w", id, domain.ErrNotFound)
	default:
		return domain.Track{}, fmt.Errorf("spotify adapter: track status %d", resp.StatusCode)
	}

	var track spotifyTrack
	if err := json.NewDecoder(resp.Body).Decode(&track); err != nil {
		return domain.Track{}, fmt.Errorf("spotify adapter: track decode error: %w", err)
	}
	if track.ID == "" {
		track.ID = id
	}

	return mapTrackToDomain(track), nil
}
