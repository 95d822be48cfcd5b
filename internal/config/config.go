package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override database settings.
const (
	EnvDatabaseURL = "BANKETL_DATABASE_URL"
	EnvDBDriver    = "BANKETL_DB_DRIVER"
)

// DefaultURL is the archived list of largest banks.
const DefaultURL = "https://web.archive.org/web/20230908091635/https://en.wikipedia.org/wiki/List_of_largest_banks"

// Config represents the top-level banketl.yaml configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	Queries  []string       `yaml:"queries"`
}

// SourceConfig describes where the bank table is scraped from.
type SourceConfig struct {
	URL     string        `yaml:"url"`
	Columns []string      `yaml:"columns"`
	Locator LocatorConfig `yaml:"locator"`
	Timeout time.Duration `yaml:"timeout,omitempty"` // 0 = no client timeout
}

// LocatorConfig selects the table locator strategy by registry name.
type LocatorConfig struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args,omitempty"`
}

// PathsConfig holds the input and output files of a run.
type PathsConfig struct {
	ExchangeRates string `yaml:"exchange_rates"`
	OutputCSV     string `yaml:"output_csv"`
	LogFile       string `yaml:"log_file"`
}

// DatabaseConfig selects the relational store and target table.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, pgx, mysql
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// Load reads a banketl.yaml file from disk. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the settings of the original largest-banks run.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:     DefaultURL,
			Columns: []string{"Name", "MC_USD_Billion"},
			Locator: LocatorConfig{Name: "first-tbody"},
		},
		Paths: PathsConfig{
			ExchangeRates: "exchange_rate.csv",
			OutputCSV:     "Largest_banks_data.csv",
			LogFile:       "code_log.txt",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "Banks.db",
			Table:  "Largest_banks",
		},
		Queries: []string{
			"SELECT * FROM Largest_banks",
			"SELECT AVG(MC_GBP_Billion) FROM Largest_banks",
			"SELECT Name from Largest_banks LIMIT 5",
		},
	}
}

// ApplyEnv overrides database settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvDBDriver); ok && v != "" {
		c.Database.Driver = v
	}
}

// Validate reports every missing required setting.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		key, val string
	}{
		{"source.url", c.Source.URL},
		{"source.locator.name", c.Source.Locator.Name},
		{"paths.exchange_rates", c.Paths.ExchangeRates},
		{"paths.output_csv", c.Paths.OutputCSV},
		{"paths.log_file", c.Paths.LogFile},
		{"database.driver", c.Database.Driver},
		{"database.dsn", c.Database.DSN},
		{"database.table", c.Database.Table},
	}
	for _, r := range required {
		if r.val == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
		}
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, fmt.Errorf("source.timeout must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
