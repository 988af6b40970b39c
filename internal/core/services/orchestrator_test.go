package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// TestOrchestrator_Recommend verifies mode dispatch and error wrapping.
func TestOrchestrator_Recommend(t *testing.T) {
	song := &mockRecommender{mode: "song", recs: []domain.Recommendation{{TrackID: "t1", Rank: 1}}}
	playlist := &mockRecommender{mode: "playlist", err: domain.NoMatchError{Names: []string{"x"}}}
	o := NewOrchestrator(&mockRepo{}, nil, nil, song, playlist)

	tests := []struct {
		name    string
		mode    string
		wantErr error
		wantLen int
	}{
		{name: "song mode", mode: "song", wantLen: 1},
		{name: "playlist propagates no match", mode: "playlist", wantErr: domain.ErrNoMatch},
		{name: "unknown mode", mode: "radio", wantErr: domain.ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := o.Recommend(context.Background(), tc.mode, []string{"a"})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(recs) != tc.wantLen {
				t.Fatalf("expected %d recs, got %d", tc.wantLen, len(recs))
			}
		})
	}

	if got := o.Modes(); !reflect.DeepEqual(got, []string{"playlist", "song"}) {
		t.Fatalf("unexpected modes %v", got)
	}
}

// TestOrchestrator_SongDetails verifies store reads, provider fill and caching.
func TestOrchestrator_SongDetails(t *testing.T) {
	stored := domain.Track{ID: "a", Title: "Stored", Artist: "X", Artists: []string{"X"}, DurationMs: 1000}
	covered := domain.Track{ID: "b", Title: "Covered", CoverURL: "http://img/b"}

	tests := []struct {
		name       string
		ids        []string
		provider   *mockProvider
		repoErr    error
		wantIDs    []string
		wantCover  map[string]string
		wantCached []string
		wantErr    error
	}{
		{
			name:    "store only keeps request order",
			ids:     []string{"b", "missing", "a"},
			wantIDs: []string{"b", "a"},
		},
		{
			name: "provider fills misses and covers",
			ids:  []string{"c", "a", "b"},
			provider: &mockProvider{tracks: map[string]domain.Track{
				"a": {ID: "a", CoverURL: "http://img/a"},
				"c": {ID: "c", Title: "Remote", CoverURL: "http://img/c"},
			}},
			wantIDs:    []string{"c", "a", "b"},
			wantCover:  map[string]string{"a": "http://img/a", "c": "http://img/c", "b": "http://img/b"},
			wantCached: []string{"c", "a"},
		},
		{
			name:     "provider failure degrades to stored data",
			ids:      []string{"a", "z"},
			provider: &mockProvider{err: errors.New("boom")},
			wantIDs:  []string{"a"},
		},
		{
			name:    "duplicates and blanks collapse",
			ids:     []string{"a", " ", "a"},
			wantIDs: []string{"a"},
		},
		{
			name:    "empty request",
			ids:     []string{"", " "},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "repository error",
			ids:     []string{"a"},
			repoErr: errors.New("db down"),
			wantErr: errRepo,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{tracks: []domain.Track{stored, covered}, getErr: tc.repoErr}
			var o *Orchestrator
			if tc.provider != nil {
				o = NewOrchestrator(repo, tc.provider, nil)
			} else {
				o = NewOrchestrator(repo, nil, nil)
			}

			got, err := o.SongDetails(context.Background(), tc.ids)
			if tc.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error")
				}
				if tc.wantErr != errRepo && !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var gotIDs []string
			for _, tr := range got {
				gotIDs = append(gotIDs, tr.ID)
				if want, ok := tc.wantCover[tr.ID]; ok && tr.CoverURL != want {
					t.Fatalf("track %s cover = %q, want %q", tr.ID, tr.CoverURL, want)
				}
			}
			if !reflect.DeepEqual(gotIDs, tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", gotIDs, tc.wantIDs)
			}

			var cached []string
			for _, tr := range repo.saved {
				cached = append(cached, tr.ID)
			}
			if !reflect.DeepEqual(cached, tc.wantCached) {
				t.Fatalf("cached = %v, want %v", cached, tc.wantCached)
			}
		})
	}
}

func TestOrchestrator_SongDetails_MergesStoredFields(t *testing.T) {
	repo := &mockRepo{tracks: []domain.Track{{ID: "a", Title: "Stored", Artist: "X", Artists: []string{"X"}, DurationMs: 1000}}}
	provider := &mockProvider{tracks: map[string]domain.Track{"a": {ID: "a", CoverURL: "http://img/a"}}}
	o := NewOrchestrator(repo, provider, nil)

	got, err := o.SongDetails(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Stored" || got[0].Artist != "X" || got[0].DurationMs != 1000 {
		t.Fatalf("stored fields lost: %+v", got)
	}
}

func TestOrchestrator_SearchSongs(t *testing.T) {
	repo := &mockRepo{}
	o := NewOrchestrator(repo, nil, mockStatus{info: domain.CatalogInfo{Tracks: 3}})

	got, err := o.SearchSongs(context.Background(), "   ", 5)
	if err != nil || len(got) != 0 || got == nil {
		t.Fatalf("blank query should return an empty list, got %v %v", got, err)
	}
	if repo.searchLimit != 0 {
		t.Fatalf("blank query must not hit the store")
	}

	if _, err := o.SearchSongs(context.Background(), " sha ", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.searchPrefix != "sha" || repo.searchLimit != MaxSearchResults {
		t.Fatalf("store called with %q/%d", repo.searchPrefix, repo.searchLimit)
	}

	if o.Status().Tracks != 3 {
		t.Fatalf("status not forwarded")
	}
}

// --- Mocks ---

var errRepo = errors.New("repository error")

type mockRecommender struct {
	mode string
	recs []domain.Recommendation
	err  error
}

func (m *mockRecommender) Mode() string { return m.mode }

func (m *mockRecommender) Recommend(ctx context.Context, names []string) ([]domain.Recommendation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

type mockProvider struct {
	tracks map[string]domain.Track
	err    error
}

func (m *mockProvider) GetTrackByID(ctx context.Context, id string) (domain.Track, error) {
	if m.err != nil {
		return domain.Track{}, m.err
	}
	t, ok := m.tracks[id]
	if !ok {
		return domain.Track{}, domain.ErrNotFound
	}
	return t, nil
}

// mockRepo is a minimal in-memory TrackRepository.
type mockRepo struct {
	tracks []domain.Track
	getErr error

	saved        []domain.Track
	searchPrefix string
	searchLimit  int
}

func (m *mockRepo) SaveTracks(ctx context.Context, tracks []domain.Track) error {
	m.saved = append(m.saved, tracks...)
	return nil
}

func (m *mockRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Track, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Track
	for _, t := range m.tracks {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepo) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Track, error) {
	m.searchPrefix = prefix
	m.searchLimit = limit
	return []domain.Track{}, nil
}

type mockStatus struct {
	info domain.CatalogInfo
}

func (m mockStatus) Info() domain.CatalogInfo { return m.info }
