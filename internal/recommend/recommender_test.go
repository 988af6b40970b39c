package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/jukebox/internal/catalog"
	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/dataset"
	"github.com/ewilliams-labs/jukebox/internal/features"
)

const fixtureCSV = `id,name,artists,album,popularity,danceability,energy,valence
s1,Shape of You,Ed Sheeran,Divide,90,0.8,0.6,0.9
s2,Perfect,Ed Sheeran,Divide,85,0.6,0.4,0.2
s3,Castle on the Hill,Ed Sheeran,Divide,80,0.5,0.8,0.5
s4,Galway Girl,Ed Sheeran,Divide,75,0.6,0.9,0.8
s5,Blinding Lights,The Weeknd,After Hours,95,0.5,0.7,0.3
s6,Save Your Tears,The Weeknd;Ariana Grande,After Hours,80,0.7,0.8,0.6
s7,Levitating,Dua Lipa,Future Nostalgia,88,0.7,0.8,0.9
s8,Bad Guy,Billie Eilish,When We All Fall Asleep,92,0.7,0.4,0.6
s9,Hello,Adele,25,70,0.5,0.4,0.3
s10,Twin A,Twin,Twins,50,0.3,0.3,0.3
s11,Twin B,Twin,Twins,60,0.3,0.3,0.3
s12,Rolling in the Deep,Adele,21,78,0.7,0.8,0.2
`

func fixtureStore(t *testing.T) *dataset.Store {
	t.Helper()
	c, err := catalog.Load(strings.NewReader(fixtureCSV),
		catalog.DefaultSchema().WithFeatures([]string{"danceability", "energy", "valence"}))
	require.NoError(t, err)
	space, err := features.Fit(c, features.MinMax)
	require.NoError(t, err)
	return dataset.NewStore(&dataset.Snapshot{Catalog: c, Space: space, Source: "fixture"})
}

func ids(recs []domain.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.TrackID
	}
	return out
}

func assertRanked(t *testing.T, recs []domain.Recommendation) {
	t.Helper()
	for i, r := range recs {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, recs[i-1].Score, "scores must not increase")
		}
	}
}

func TestSongRecommender_ShapeOfYou(t *testing.T) {
	r := NewSongRecommender(fixtureStore(t))

	recs, err := r.Recommend(context.Background(), []string{"Shape of You"})
	require.NoError(t, err)
	require.Len(t, recs, DefaultLimit)
	assert.NotContains(t, ids(recs), "s1")
	assertRanked(t, recs)

	for _, rec := range recs {
		assert.NotEmpty(t, rec.Title)
		assert.NotEmpty(t, rec.Artist)
	}
}

func TestRecommend_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		names []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"blank", []string{"Shape of You", "  "}},
		{"too many", []string{"Hello", "Perfect", "Bad Guy", "Levitating"}},
	}

	store := fixtureStore(t)
	for _, r := range []*Recommender{NewSongRecommender(store), NewPlaylistRecommender(store)} {
		for _, tt := range tests {
			t.Run(r.Mode()+"/"+tt.name, func(t *testing.T) {
				recs, err := r.Recommend(context.Background(), tt.names)
				require.Error(t, err)
				assert.Nil(t, recs)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
			})
		}
	}
}

func TestRecommend_NoMatch(t *testing.T) {
	store := fixtureStore(t)
	for _, r := range []*Recommender{NewSongRecommender(store), NewPlaylistRecommender(store)} {
		t.Run(r.Mode(), func(t *testing.T) {
			recs, err := r.Recommend(context.Background(), []string{"Nonexistent Song XYZ"})
			require.Error(t, err)
			assert.Nil(t, recs)
			assert.True(t, errors.Is(err, domain.ErrNoMatch))
			assert.Equal(t, "no valid songs found", err.Error())
		})
	}
}

func TestSongRecommender_PartialAndDuplicateSeeds(t *testing.T) {
	r := NewSongRecommender(fixtureStore(t))
	ctx := context.Background()

	want, err := r.Recommend(ctx, []string{"Shape of You"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		names []string
	}{
		{"unresolved name ignored", []string{"Shape of You", "Nonexistent Song XYZ"}},
		{"duplicate seed counted once", []string{"Shape of You", "shape  of you"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Recommend(ctx, tt.names)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestSongRecommender_ThreeSeedCentroid(t *testing.T) {
	store := fixtureStore(t)
	snap := store.Current()
	r := NewSongRecommender(store, WithLimit(20))

	names := []string{"Shape of You", "Hello", "Levitating"}
	recs, err := r.Recommend(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, recs, snap.Catalog.Len()-3)

	var seeds [][]float64
	for _, n := range names {
		pos, ok := snap.Catalog.ResolveIndex(n)
		require.True(t, ok)
		seeds = append(seeds, snap.Space.Vector(pos))
	}
	query := features.Centroid(seeds)

	for _, rec := range recs {
		assert.NotContains(t, []string{"s1", "s9", "s7"}, rec.TrackID)
		track, ok := snap.Catalog.ByID(rec.TrackID)
		require.True(t, ok)
		pos, ok := snap.Catalog.ResolveIndex(track.Title)
		require.True(t, ok)
		assert.InDelta(t, features.Cosine(query, snap.Space.Vector(pos)), rec.Score, 1e-12)
	}
	assertRanked(t, recs)
}

func TestSongRecommender_TieBreakByPopularity(t *testing.T) {
	r := NewSongRecommender(fixtureStore(t), WithLimit(20))

	recs, err := r.Recommend(context.Background(), []string{"Shape of You"})
	require.NoError(t, err)

	got := ids(recs)
	a := indexOf(got, "s10")
	b := indexOf(got, "s11")
	require.NotEqual(t, -1, a)
	require.NotEqual(t, -1, b)
	assert.InDelta(t, recs[a].Score, recs[b].Score, 0)
	assert.Equal(t, a, b+1, "equal scores rank the more popular track first")
}

func TestSongRecommender_LimitAndSnapshotSwap(t *testing.T) {
	store := fixtureStore(t)
	r := NewSongRecommender(store, WithLimit(3))

	recs, err := r.Recommend(context.Background(), []string{"Hello"})
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	small, err := catalog.Load(strings.NewReader("id,name,artists,album,popularity,danceability\nx,Hello,Adele,25,1,0.5\ny,Other,Someone,X,1,0.9\n"),
		catalog.DefaultSchema().WithFeatures([]string{"danceability"}))
	require.NoError(t, err)
	space, err := features.Fit(small, features.MinMax)
	require.NoError(t, err)
	store.Swap(&dataset.Snapshot{Catalog: small, Space: space})

	recs, err = r.Recommend(context.Background(), []string{"Hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, ids(recs), "fewer candidates than the limit returns all of them")
}

func TestPlaylistRecommender_ArtistCap(t *testing.T) {
	r := NewPlaylistRecommender(fixtureStore(t), WithLimit(20))

	recs, err := r.Recommend(context.Background(), []string{"Perfect", "Blinding Lights"})
	require.NoError(t, err)
	assertRanked(t, recs)

	counts := map[string]int{}
	for _, rec := range recs {
		for _, a := range strings.Split(rec.Artist, ", ") {
			counts[strings.ToLower(a)]++
		}
	}
	for artist, n := range counts {
		assert.LessOrEqual(t, n, DefaultArtistCap, artist)
	}
	// Ed Sheeran has three candidates and one must be dropped.
	assert.Len(t, recs, 12-2-1)
	assert.NotContains(t, ids(recs), "s2")
	assert.NotContains(t, ids(recs), "s5")
}

func TestPlaylistRecommender_NearestSeedScore(t *testing.T) {
	store := fixtureStore(t)
	snap := store.Current()
	r := NewPlaylistRecommender(store, WithLimit(20), WithArtistCap(10))

	names := []string{"Perfect", "Levitating"}
	recs, err := r.Recommend(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, recs, snap.Catalog.Len()-2)

	var seeds [][]float64
	for _, n := range names {
		pos, _ := snap.Catalog.ResolveIndex(n)
		seeds = append(seeds, snap.Space.Vector(pos))
	}
	for _, rec := range recs {
		track, _ := snap.Catalog.ByID(rec.TrackID)
		pos, _ := snap.Catalog.ResolveIndex(track.Title)
		s0 := features.Cosine(seeds[0], snap.Space.Vector(pos))
		s1 := features.Cosine(seeds[1], snap.Space.Vector(pos))
		want := DefaultNearestWeight*max(s0, s1) + (1-DefaultNearestWeight)*(s0+s1)/2
		assert.InDelta(t, want, rec.Score, 1e-12, rec.TrackID)
	}
}

func TestRecommend_DeterministicAcrossCalls(t *testing.T) {
	store := fixtureStore(t)
	for _, r := range []*Recommender{NewSongRecommender(store), NewPlaylistRecommender(store)} {
		t.Run(r.Mode(), func(t *testing.T) {
			first, err := r.Recommend(context.Background(), []string{"Bad Guy", "Hello"})
			require.NoError(t, err)
			second, err := r.Recommend(context.Background(), []string{"Bad Guy", "Hello"})
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestArtistKeys(t *testing.T) {
	got := artistKeys([]string{"The Weeknd", "the weeknd ", "", "Ariana Grande"})
	assert.Equal(t, []string{"the weeknd", "ariana grande"}, got)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
