// Package rest exposes the recommendation service over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// Service is the slice of the orchestrator the HTTP layer needs.
type Service interface {
	Recommend(ctx context.Context, mode string, names []string) ([]domain.Recommendation, error)
	SongDetails(ctx context.Context, ids []string) ([]domain.Track, error)
	SearchSongs(ctx context.Context, query string, limit int) ([]domain.Track, error)
	Status() domain.CatalogInfo
}

// Options configure the middleware chain. Zero values disable rate limiting
// and allow every origin.
type Options struct {
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
	Logger      zerolog.Logger
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc     Service
	router  *http.ServeMux // Standard library router
	logger  zerolog.Logger
	handler http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes.
//
//nolint:gocritic // options are read once at construction
func NewHandler(svc Service, opts Options) *Handler {
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
		logger: opts.Logger,
	}

	h.routes()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	chain := []func(http.Handler) http.Handler{
		requestID,
		accessLog(h.logger),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}),
	}
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		chain = append(chain, httprate.LimitByIP(opts.RateLimit, opts.RateWindow))
	}

	var handler http.Handler = h.router
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	h.handler = handler
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.Handle("GET /metrics", promhttp.Handler())

	h.router.HandleFunc("POST /api/recommend", h.Recommend)
	h.router.HandleFunc("POST /api/song_details", h.SongDetails)
	h.router.HandleFunc("GET /api/search_songs", h.SearchSongs)
}

type healthResponse struct {
	Status  string             `json:"status"`
	Catalog domain.CatalogInfo `json:"catalog"`
}

// HealthCheck reports liveness and the dataset being served.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Catalog: h.svc.Status()})
}
