package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/store"
)

func newQueryCommand() *cobra.Command {
	var (
		configPath string
		db         dbFlags
	)

	cmd := &cobra.Command{
		Use:   "query [sql]...",
		Short: "Run SQL statements against the loaded database",
		Long: "Run SQL statements against the loaded database and print each result as a table.\n" +
			"With no arguments the configured report queries are run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			db.apply(cmd, cfg)

			queries := args
			if len(queries) == 0 {
				queries = cfg.Queries
			}

			s, err := store.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN, log.Logger)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.RunQueries(cmd.Context(), cmd.OutOrStdout(), queries); err != nil {
				return fmt.Errorf("running queries: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", DefaultConfigFile, "config file")
	db.register(cmd)

	return cmd
}
