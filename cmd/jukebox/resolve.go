package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/jukebox/internal/app"
	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

type resolvedTrack struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	Popularity float64  `json:"popularity"`
}

func NewResolveCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Show which catalog track a name resolves to",
		Long:  `Resolve a free-form song name with the same matching the recommenders use.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeResolveRunner(load),
	}
}

func makeResolveRunner(load configLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		name := strings.Join(args, " ")

		cfg, err := load(cmd)
		if err != nil {
			return err
		}
		store, _, err := app.LoadStore(cfg)
		if err != nil {
			return err
		}

		track, ok := store.Current().Catalog.Resolve(name)
		if !ok {
			return domain.NoMatchError{Names: []string{name}}
		}

		if asJSON {
			return outputJSON(cmd, resolvedTrack{
				ID:         track.ID,
				Title:      track.Title,
				Artists:    track.Artists,
				Album:      track.Album,
				Popularity: track.Popularity,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%g\n", track.ID, track.Title, track.Artist, track.Popularity)
		return nil
	}
}
