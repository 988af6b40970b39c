// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_recommend_requests_total",
			Help: "Recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jukebox_recommend_duration_seconds",
			Help:    "Time spent producing recommendations",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	CatalogTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_catalog_tracks",
			Help: "Tracks in the catalog currently served",
		},
	)

	DatasetReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_dataset_reloads_total",
			Help: "Dataset reload attempts by outcome",
		},
		[]string{"outcome"},
	)

	IndexedTracks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jukebox_indexed_tracks_total",
			Help: "Track metadata rows written to the metadata store",
		},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeOK      = "ok"
	OutcomeNoMatch = "no_match"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)
