package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banketl/banketl/internal/config"
	"github.com/banketl/banketl/internal/rates"
)

// RatesFile is the exchange rate file name written by init.
const RatesFile = "exchange_rate.csv"

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default banketl.yaml and sample exchange rates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized banketl project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func runInit(dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, DefaultConfigFile)
	ratesPath := filepath.Join(dir, RatesFile)
	if !force {
		for _, p := range []string{cfgPath, ratesPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", filepath.Base(p))
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", filepath.Base(p), err)
			}
		}
	}

	// Paths in the config are relative to the directory the run starts in.
	if err := config.Save(cfgPath, config.Default()); err != nil {
		return err
	}
	return rates.Save(ratesPath, rates.Default())
}
