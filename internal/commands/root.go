package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/buildinfo"
	"github.com/banketl/banketl/internal/logger"
)

// DefaultConfigFile is read by run and query when --config is not given.
const DefaultConfigFile = "banketl.yaml"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:     "banketl",
		Short:   "Largest banks market capitalization ETL",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Setup(logLevel, logFormat); err != nil {
				return err
			}
			log.Debug().Str("command", cmd.Name()).Msg("starting")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "log format: text, json")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newQueryCommand())

	return rootCmd
}
