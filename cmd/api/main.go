package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ewilliams-labs/jukebox/internal/adapters/rest"
	"github.com/ewilliams-labs/jukebox/internal/adapters/spotify"
	"github.com/ewilliams-labs/jukebox/internal/adapters/sqlite"
	"github.com/ewilliams-labs/jukebox/internal/app"
	"github.com/ewilliams-labs/jukebox/internal/config"
	"github.com/ewilliams-labs/jukebox/internal/core/ports"
	"github.com/ewilliams-labs/jukebox/internal/core/services"
	"github.com/ewilliams-labs/jukebox/internal/dataset"
	"github.com/ewilliams-labs/jukebox/internal/logging"
	"github.com/ewilliams-labs/jukebox/internal/worker"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load("")
	if err != nil {
		log := logging.Logger()
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(app.LoggingConfig(cfg))
	log := logging.WithComponent("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Dataset. A catalog that cannot be built is fatal.
	store, datasetOpts, err := app.LoadStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Dataset.Path).Msg("failed to load dataset")
	}
	snap := store.Current()
	log.Info().
		Str("path", snap.Source).
		Int("tracks", snap.Catalog.Len()).
		Int("skipped", snap.Catalog.Skipped()).
		Str("normalization", string(snap.Space.Method())).
		Msg("dataset loaded")

	// 3. Driven adapters
	db, err := sqlite.NewAdapter(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("failed to initialize database")
	}
	defer db.Close()

	var metadata ports.MetadataProvider
	if cfg.Spotify.Enabled() {
		spotifyLog := logging.WithComponent("spotify")
		metadata = spotify.NewClientCredentials(ctx,
			cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
			cfg.Spotify.TokenURL, cfg.Spotify.BaseURL,
			spotify.Options{
				MaxRetries: cfg.Spotify.MaxRetries,
				Backoff:    cfg.Spotify.RetryBackoff,
				Logger:     &spotifyLog,
			})
		log.Info().Msg("spotify metadata enrichment enabled")
	} else {
		log.Info().Msg("spotify credentials not set, serving stored metadata only")
	}

	// 4. Background indexing of catalog metadata into the store
	pool := worker.NewPool(db, cfg.Worker.Workers, cfg.Worker.QueueSize, cfg.Worker.BatchSize).
		WithLogger(logging.WithComponent("worker"))
	pool.Start()
	defer pool.Stop()
	pool.Submit(worker.Job{Source: snap.Source, Tracks: snap.Catalog.Tracks()})

	if cfg.Dataset.Watch {
		watcher := dataset.NewWatcher(store, datasetOpts, cfg.Dataset.Debounce, logging.WithComponent("dataset"))
		watcher.OnReload = func(s *dataset.Snapshot) {
			pool.Submit(worker.Job{Source: s.Source, Tracks: s.Catalog.Tracks()})
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Error().Err(err).Msg("dataset watcher stopped")
			}
		}()
	}

	// 5. Core logic
	recommenders, err := app.Recommenders(cfg, store, logging.WithComponent("recommend"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build recommenders")
	}
	svc := services.NewOrchestrator(db, metadata, store, recommenders...).
		WithLogger(logging.WithComponent("service"))

	// 6. Driving adapter
	handler := rest.NewHandler(svc, rest.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow,
		Logger:      logging.WithComponent("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()
	log.Info().Str("addr", cfg.Server.Addr).Strs("modes", svc.Modes()).Msg("jukebox api listening")

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}
}
