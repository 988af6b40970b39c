package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/jukebox/internal/app"
	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/logging"
	"github.com/ewilliams-labs/jukebox/internal/recommend"
)

func NewRecommendCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <song> [song...]",
		Short: "Recommend songs similar to up to three seeds",
		Long: `Recommend songs similar to the given seed titles.

The song mode scores tracks against the average of the seeds. The playlist
mode favours tracks close to any single seed and caps results per artist.`,
		Example: `  jukebox recommend "Shape of You"
  jukebox recommend --mode playlist "Perfect" "Blinding Lights"`,
		Args: cobra.MinimumNArgs(1),
		RunE: makeRecommendRunner(load),
	}

	cmd.Flags().StringP("mode", "m", recommend.ModeSong, "Recommendation mode (song|playlist)")
	cmd.Flags().IntP("limit", "n", 0, "Maximum results (default from config)")
	return cmd
}

func makeRecommendRunner(load configLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := load(cmd)
		if err != nil {
			return err
		}
		if limit > 0 {
			cfg.Recommend.Limit = limit
		}

		store, _, err := app.LoadStore(cfg)
		if err != nil {
			return err
		}
		recommenders, err := app.Recommenders(cfg, store, logging.WithComponent("recommend"))
		if err != nil {
			return err
		}

		for _, r := range recommenders {
			if r.Mode() != mode {
				continue
			}
			recs, err := r.Recommend(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			if asJSON {
				return outputJSON(cmd, recs)
			}
			printRecommendations(cmd, recs)
			return nil
		}
		return domain.InvalidInputError{Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}

func printRecommendations(cmd *cobra.Command, recs []domain.Recommendation) {
	out := cmd.OutOrStdout()
	for _, r := range recs {
		line := fmt.Sprintf("%2d. %s by %s", r.Rank, r.Title, r.Artist)
		if r.Album != "" {
			line += fmt.Sprintf(" [%s]", r.Album)
		}
		fmt.Fprintf(out, "%s  %.4f\n", line, r.Score)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "no recommendations")
	}
}
