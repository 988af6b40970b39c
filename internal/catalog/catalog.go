// Package catalog loads the track dataset and answers name and id lookups.
// A Catalog is immutable once built and safe for concurrent readers.
package catalog

import (
	"cmp"
	"iter"
	"slices"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// Catalog is an ordered, read-only collection of tracks with lookup indexes.
type Catalog struct {
	tracks  []domain.Track
	columns []string
	skipped int

	byID    map[string]int
	byTitle map[string][]int // folded title -> positions, best first
	tokens  map[string][]int // token -> ascending positions
	tokenN  []int            // distinct title+artist tokens per position
}

// New indexes tracks in the given order. Every track must carry one value per feature column.
func New(tracks []domain.Track, columns []string) *Catalog {
	c := &Catalog{
		tracks:  tracks,
		columns: columns,
		byID:    make(map[string]int, len(tracks)),
		byTitle: make(map[string][]int, len(tracks)),
		tokens:  make(map[string][]int),
		tokenN:  make([]int, len(tracks)),
	}

	for i, t := range tracks {
		c.byID[t.ID] = i

		key := foldTitle(t.Title)
		c.byTitle[key] = append(c.byTitle[key], i)

		toks := trackTokens(t)
		c.tokenN[i] = len(toks)
		for _, tok := range toks {
			c.tokens[tok] = append(c.tokens[tok], i)
		}
	}

	for _, positions := range c.byTitle {
		if len(positions) > 1 {
			slices.SortStableFunc(positions, c.comparePopularity)
		}
	}

	return c
}

func trackTokens(t domain.Track) []string {
	text := t.Title
	for _, a := range t.Artists {
		text += " " + a
	}
	return tokenize(text)
}

// comparePopularity orders positions by popularity desc, then catalog position asc.
func (c *Catalog) comparePopularity(a, b int) int {
	if r := cmp.Compare(c.tracks[b].Popularity, c.tracks[a].Popularity); r != 0 {
		return r
	}
	return cmp.Compare(a, b)
}

// Len returns the number of tracks.
func (c *Catalog) Len() int { return len(c.tracks) }

// Columns returns the ordered feature column names.
func (c *Catalog) Columns() []string { return c.columns }

// Skipped returns how many source rows were rejected during load.
func (c *Catalog) Skipped() int { return c.skipped }

// At returns the track at a catalog position.
func (c *Catalog) At(pos int) domain.Track { return c.tracks[pos] }

// Tracks returns all tracks in catalog order. The slice must not be modified.
func (c *Catalog) Tracks() []domain.Track { return c.tracks }

// ByID looks a track up by its stable id.
func (c *Catalog) ByID(id string) (domain.Track, bool) {
	pos, ok := c.byID[id]
	if !ok {
		return domain.Track{}, false
	}
	return c.tracks[pos], true
}

// Resolve maps a user supplied name to a track. See ResolveIndex for the policy.
func (c *Catalog) Resolve(name string) (domain.Track, bool) {
	pos, ok := c.ResolveIndex(name)
	if !ok {
		return domain.Track{}, false
	}
	return c.tracks[pos], true
}

// ResolveIndex returns the catalog position for name. An exact case-insensitive
// title match wins, highest popularity first. Otherwise the track whose title
// and artist tokens contain every query token is chosen by overlap, popularity,
// then position. No other fallback is attempted.
func (c *Catalog) ResolveIndex(name string) (int, bool) {
	if positions, ok := c.byTitle[foldTitle(name)]; ok && len(positions) > 0 {
		return positions[0], true
	}

	query := tokenize(name)
	if len(query) == 0 {
		return 0, false
	}

	candidates := c.postingsFor(query)
	if len(candidates) == 0 {
		return 0, false
	}

	best := candidates[0]
	for _, pos := range candidates[1:] {
		if c.betterOverlap(pos, best, len(query)) {
			best = pos
		}
	}
	return best, true
}

// postingsFor intersects the posting lists of all query tokens.
func (c *Catalog) postingsFor(query []string) []int {
	lists := make([][]int, 0, len(query))
	for _, tok := range query {
		postings, ok := c.tokens[tok]
		if !ok {
			return nil
		}
		lists = append(lists, postings)
	}
	slices.SortFunc(lists, func(a, b []int) int { return cmp.Compare(len(a), len(b)) })

	result := slices.Clone(lists[0])
	for _, other := range lists[1:] {
		result = intersectSorted(result, other)
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

func intersectSorted(a, b []int) []int {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// betterOverlap reports whether pos beats best. Every candidate contains all
// query tokens, so the Jaccard overlap is queryLen / tokenN[pos].
func (c *Catalog) betterOverlap(pos, best, queryLen int) bool {
	jp := float64(queryLen) / float64(c.tokenN[pos])
	jb := float64(queryLen) / float64(c.tokenN[best])
	if jp != jb {
		return jp > jb
	}
	return c.comparePopularity(pos, best) < 0
}

// AllExcept lazily yields (position, track) for every track whose position is
// not in exclude, in catalog order.
func (c *Catalog) AllExcept(exclude map[int]struct{}) iter.Seq2[int, domain.Track] {
	return func(yield func(int, domain.Track) bool) {
		for i, t := range c.tracks {
			if _, skip := exclude[i]; skip {
				continue
			}
			if !yield(i, t) {
				return
			}
		}
	}
}
