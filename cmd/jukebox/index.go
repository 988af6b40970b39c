package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/jukebox/internal/adapters/sqlite"
	"github.com/ewilliams-labs/jukebox/internal/app"
	"github.com/ewilliams-labs/jukebox/internal/logging"
	"github.com/ewilliams-labs/jukebox/internal/worker"
)

func NewIndexCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load dataset track metadata into the SQLite store",
		Long:  `Write title, artist and album metadata for every catalog track into the store used by song_details and search.`,
		Args:  cobra.NoArgs,
		RunE:  makeIndexRunner(load),
	}

	cmd.Flags().String("db", "", "SQLite database path (default from config)")
	return cmd
}

func makeIndexRunner(load configLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("db")

		cfg, err := load(cmd)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Storage.Path = dbPath
		}

		store, _, err := app.LoadStore(cfg)
		if err != nil {
			return err
		}
		db, err := sqlite.NewAdapter(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		snap := store.Current()
		pool := worker.NewPool(db, cfg.Worker.Workers, 1, cfg.Worker.BatchSize).
			WithLogger(logging.WithComponent("worker"))
		pool.Start()
		pool.Submit(worker.Job{Source: snap.Source, Tracks: snap.Catalog.Tracks()})
		pool.Stop()

		if failed := pool.Failed(); failed > 0 {
			return fmt.Errorf("index: %d of %d tracks failed to save", failed, snap.Catalog.Len())
		}
		total, err := db.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d tracks from %s into %s (%d stored)\n",
			pool.Indexed(), snap.Source, cfg.Storage.Path, total)
		return nil
	}
}
