// Package features turns raw audio features into comparable embeddings.
package features

import (
	"fmt"
	"math"

	"github.com/ewilliams-labs/jukebox/internal/catalog"
	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// Normalization selects how each feature dimension is scaled.
type Normalization string

const (
	// MinMax maps each dimension onto [0,1] using the catalog range.
	MinMax Normalization = "minmax"
	// ZScore centers each dimension on the catalog mean in units of standard deviation.
	ZScore Normalization = "zscore"
)

// ParseNormalization validates a configured normalization name. Empty selects MinMax.
func ParseNormalization(name string) (Normalization, error) {
	switch Normalization(name) {
	case "", MinMax:
		return MinMax, nil
	case ZScore:
		return ZScore, nil
	default:
		return "", fmt.Errorf("features: unknown normalization %q", name)
	}
}

// Space holds the fitted scaling parameters and the embedding of every catalog track.
// It is immutable after Fit.
type Space struct {
	method  Normalization
	offset  []float64
	scale   []float64 // zero means the dimension is constant over the catalog
	vectors [][]float64
}

// Fit computes per-dimension parameters over every track of c and embeds them.
func Fit(c *catalog.Catalog, method Normalization) (*Space, error) {
	if c == nil || c.Len() == 0 {
		return nil, fmt.Errorf("features: cannot fit an empty catalog")
	}
	method, err := ParseNormalization(string(method))
	if err != nil {
		return nil, err
	}

	dim := len(c.Columns())
	s := &Space{
		method: method,
		offset: make([]float64, dim),
		scale:  make([]float64, dim),
	}

	switch method {
	case MinMax:
		s.fitMinMax(c.Tracks(), dim)
	case ZScore:
		s.fitZScore(c.Tracks(), dim)
	}

	s.vectors = make([][]float64, c.Len())
	for i, t := range c.Tracks() {
		s.vectors[i] = s.Embed(t)
	}
	return s, nil
}

func (s *Space) fitMinMax(tracks []domain.Track, dim int) {
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for d := 0; d < dim; d++ {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for _, t := range tracks {
		for d := 0; d < dim; d++ {
			v := t.Features[d]
			lo[d] = math.Min(lo[d], v)
			hi[d] = math.Max(hi[d], v)
		}
	}
	for d := 0; d < dim; d++ {
		s.offset[d] = lo[d]
		if span := hi[d] - lo[d]; span > 0 {
			s.scale[d] = span
		}
	}
}

func (s *Space) fitZScore(tracks []domain.Track, dim int) {
	n := float64(len(tracks))
	for _, t := range tracks {
		for d := 0; d < dim; d++ {
			s.offset[d] += t.Features[d]
		}
	}
	for d := 0; d < dim; d++ {
		s.offset[d] /= n
	}

	variance := make([]float64, dim)
	for _, t := range tracks {
		for d := 0; d < dim; d++ {
			diff := t.Features[d] - s.offset[d]
			variance[d] += diff * diff
		}
	}
	for d := 0; d < dim; d++ {
		if std := math.Sqrt(variance[d] / n); std > 0 {
			s.scale[d] = std
		}
	}
}

// Method returns the fitted normalization.
func (s *Space) Method() Normalization { return s.method }

// Dim returns the embedding length.
func (s *Space) Dim() int { return len(s.offset) }

// Vector returns the precomputed embedding for a catalog position. Callers must not modify it.
func (s *Space) Vector(pos int) []float64 { return s.vectors[pos] }

// Embed scales a track's raw features with the fitted parameters. Missing
// trailing features embed as zero. MinMax output is clamped to [0,1] so tracks
// outside the fitted range stay bounded.
func (s *Space) Embed(t domain.Track) []float64 {
	out := make([]float64, len(s.offset))
	for d := range out {
		if d >= len(t.Features) || s.scale[d] == 0 {
			continue
		}
		v := (t.Features[d] - s.offset[d]) / s.scale[d]
		if s.method == MinMax {
			v = min(max(v, 0), 1)
		}
		out[d] = v
	}
	return out
}
