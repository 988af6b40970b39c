package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/jukebox/internal/app"
	"github.com/ewilliams-labs/jukebox/internal/config"
	"github.com/ewilliams-labs/jukebox/internal/logging"
)

// configLoader resolves the configuration for a command invocation.
type configLoader func(cmd *cobra.Command) (*config.Config, error)

func NewRootCmd(version string, load configLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jukebox",
		Short:         "Content-based music recommendations",
		Long:          `Resolve songs against the track dataset and recommend similar ones by audio features.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		NewRecommendCmd(load),
		NewResolveCmd(load),
		NewIndexCmd(load),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default $JUKEBOX_CONFIG or ./config.yaml)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

// loadConfig reads --config and initialises logging from the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	lc := app.LoggingConfig(cfg)
	lc.Output = cmd.ErrOrStderr()
	logging.Init(lc)
	return cfg, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
