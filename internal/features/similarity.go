package features

import (
	"fmt"
	"math"
)

// SimilarityFunc scores two embeddings; higher means more alike.
type SimilarityFunc func(a, b []float64) float64

// Metric names a similarity function.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// ParseMetric resolves a configured metric name. Empty selects cosine.
func ParseMetric(name string) (SimilarityFunc, error) {
	switch Metric(name) {
	case "", MetricCosine:
		return Cosine, nil
	case MetricEuclidean:
		return EuclideanSimilarity, nil
	default:
		return nil, fmt.Errorf("features: unknown similarity metric %q", name)
	}
}

// Cosine returns the cosine similarity of a and b in [-1,1]. A zero vector
// has no direction and scores 0 against everything.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 || math.IsNaN(denom) {
		return 0
	}
	return min(max(dot/denom, -1), 1)
}

// EuclideanSimilarity maps euclidean distance into (0,1] as 1/(1+d).
func EuclideanSimilarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return 1 / (1 + math.Sqrt(sum))
}

// Centroid returns the coordinate-wise mean of vectors, or nil for none.
func Centroid(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range out {
			out[i] += v[i]
		}
	}
	n := float64(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out
}
