package commands

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/config"
)

// loadConfig reads the config file named by --config. A missing default file
// falls back to built-in defaults; a missing explicit file is an error.
// Environment overrides are applied last.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = config.Default()
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// dbFlags are the database overrides shared by run and query.
type dbFlags struct {
	driver string
	dsn    string
}

func (f *dbFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "db-driver", "", "database driver: sqlite, pgx, mysql")
	cmd.Flags().StringVar(&f.dsn, "db", "", "database file or connection string")
}

func (f *dbFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("db-driver") {
		cfg.Database.Driver = f.driver
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.DSN = f.dsn
	}
}
