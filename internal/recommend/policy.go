package recommend

import (
	"strings"

	"github.com/ewilliams-labs/jukebox/internal/catalog"
	"github.com/ewilliams-labs/jukebox/internal/features"
)

// scorer builds the scoring function for one request from its seed embeddings.
type scorer func(seeds [][]float64) func(candidate []float64) float64

// selector picks at most limit entries from candidates ranked best first.
type selector func(c *catalog.Catalog, ranked []candidate, limit int) []candidate

type policy struct {
	mode   string
	score  scorer
	choose selector
}

// centroidScorer compares every candidate with the mean of the seeds.
func centroidScorer(sim features.SimilarityFunc) scorer {
	return func(seeds [][]float64) func([]float64) float64 {
		query := features.Centroid(seeds)
		return func(candidate []float64) float64 {
			return sim(query, candidate)
		}
	}
}

// nearestSeedScorer blends the best per-seed similarity with the mean one:
// w*max + (1-w)*mean.
func nearestSeedScorer(sim features.SimilarityFunc, w float64) scorer {
	return func(seeds [][]float64) func([]float64) float64 {
		return func(candidate []float64) float64 {
			var best, sum float64
			for i, seed := range seeds {
				s := sim(seed, candidate)
				if i == 0 || s > best {
					best = s
				}
				sum += s
			}
			mean := sum / float64(len(seeds))
			return w*best + (1-w)*mean
		}
	}
}

func truncate(_ *catalog.Catalog, ranked []candidate, limit int) []candidate {
	return ranked[:min(limit, len(ranked))]
}

// artistCapped walks the ranked list and skips a candidate when any of its
// artists already reached capPerArtist accepted results.
func artistCapped(capPerArtist int) selector {
	return func(c *catalog.Catalog, ranked []candidate, limit int) []candidate {
		out := make([]candidate, 0, min(limit, len(ranked)))
		counts := make(map[string]int)

		for _, cand := range ranked {
			if len(out) == limit {
				break
			}
			artists := artistKeys(c.At(cand.pos).Artists)
			full := false
			for _, a := range artists {
				if counts[a] >= capPerArtist {
					full = true
					break
				}
			}
			if full {
				continue
			}
			for _, a := range artists {
				counts[a]++
			}
			out = append(out, cand)
		}
		return out
	}
}

func artistKeys(artists []string) []string {
	keys := make([]string, 0, len(artists))
	seen := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		k := strings.ToLower(strings.TrimSpace(a))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
