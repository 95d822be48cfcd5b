package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/pipeline"
)

func newRunCommand() *cobra.Command {
	var (
		configPath  string
		url         string
		rates       string
		csvPath     string
		logFile     string
		table       string
		locator     string
		locatorArgs []string
		db          dbFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, transform and load the largest banks table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("url") {
				cfg.Source.URL = url
			}
			if flags.Changed("rates") {
				cfg.Paths.ExchangeRates = rates
			}
			if flags.Changed("csv") {
				cfg.Paths.OutputCSV = csvPath
			}
			if flags.Changed("log-file") {
				cfg.Paths.LogFile = logFile
			}
			if flags.Changed("table") {
				cfg.Database.Table = table
			}
			if flags.Changed("locator") {
				cfg.Source.Locator.Name = locator
				cfg.Source.Locator.Args = nil
			}
			if flags.Changed("locator-arg") {
				cfg.Source.Locator.Args = locatorArgs
			}
			db.apply(cmd, cfg)

			p, err := pipeline.New(cfg,
				pipeline.WithOutput(cmd.OutOrStdout()),
				pipeline.WithLogger(log.Logger),
			)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("etl run: %w", err)
			}
			log.Info().
				Int("banks", len(result)).
				Str("csv", cfg.Paths.OutputCSV).
				Str("table", cfg.Database.Table).
				Msg("run finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", DefaultConfigFile, "config file")
	cmd.Flags().StringVar(&url, "url", "", "source page URL")
	cmd.Flags().StringVar(&rates, "rates", "", "exchange rate CSV")
	cmd.Flags().StringVar(&csvPath, "csv", "", "output CSV path")
	cmd.Flags().StringVar(&logFile, "log-file", "", "progress log path")
	cmd.Flags().StringVar(&table, "table", "", "database table name")
	cmd.Flags().StringVar(&locator, "locator", "", "table locator: first-tbody, caption, headers")
	cmd.Flags().StringSliceVar(&locatorArgs, "locator-arg", nil, "locator argument (caption text or header names)")
	db.register(cmd)

	return cmd
}
