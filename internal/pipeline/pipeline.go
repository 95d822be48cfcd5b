// Package pipeline runs the extract, transform and load stages in order and
// records progress after each one.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/banketl/banketl/internal/banks"
	"github.com/banketl/banketl/internal/config"
	"github.com/banketl/banketl/internal/extract"
	"github.com/banketl/banketl/internal/model"
	"github.com/banketl/banketl/internal/progress"
	"github.com/banketl/banketl/internal/store"
	"github.com/banketl/banketl/internal/transform"
)

// Progress messages, in the order a successful run writes them.
const (
	MsgStart       = "Preliminaries complete. Initiating ETL process."
	MsgExtracted   = "Data extraction complete. Initiating Transformation process."
	MsgTransformed = "Data transformation complete. Initiating loading process."
	MsgSavedCSV    = "Data saved to CSV file."
	MsgConnected   = "SQL Connection initiated."
	MsgLoaded      = "Data loaded to Database as table. Running the query."
	MsgComplete    = "Process Complete."
)

// Pipeline is a configured ETL run.
type Pipeline struct {
	cfg       *config.Config
	client    *http.Client
	out       io.Writer
	now       func() time.Time
	logger    zerolog.Logger
	extractor *extract.Extractor
	progress  *progress.Log
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient overrides the client used to fetch the source page.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// WithOutput sets where query results are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithClock sets the clock used for progress timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New validates cfg and resolves its table locator.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		out:    os.Stdout,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: cfg.Source.Timeout}
	}

	locator, err := extract.DefaultRegistry().New(cfg.Source.Locator.Name, cfg.Source.Locator.Args)
	if err != nil {
		return nil, fmt.Errorf("resolving table locator: %w", err)
	}

	p.extractor = extract.New(
		extract.WithHTTPClient(p.client),
		extract.WithLocator(locator),
		extract.WithLogger(p.logger),
	)
	p.progress = progress.New(cfg.Paths.LogFile,
		progress.WithClock(p.now),
		progress.WithLogger(p.logger),
	)
	return p, nil
}

// Run executes every stage and returns the loaded table. The first failing
// stage stops the run; progress lines written so far stay in the log.
func (p *Pipeline) Run(ctx context.Context) (model.ResultTable, error) {
	if err := p.progress.Log(MsgStart); err != nil {
		return nil, err
	}

	records, stats, err := p.extractor.Extract(ctx, p.cfg.Source.URL, p.cfg.Source.Columns)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.logger.Debug().
		Int("rows", stats.Rows).
		Int("extracted", stats.Extracted).
		Msg("extracted bank table")
	if stats.Skipped > 0 {
		p.logger.Warn().
			Int("skipped", stats.Skipped).
			Ints("rows", stats.SkippedRows).
			Msg("rows without a bank name link were skipped")
	}
	if err := p.progress.Log(MsgExtracted); err != nil {
		return nil, err
	}

	table, err := transform.TransformFile(records, p.cfg.Paths.ExchangeRates)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	for _, verr := range banks.ValidateTable(table) {
		p.logger.Warn().Err(verr).Msg("suspicious row in result table")
	}
	if err := p.progress.Log(MsgTransformed); err != nil {
		return nil, err
	}

	if err := banks.Save(p.cfg.Paths.OutputCSV, table); err != nil {
		return nil, fmt.Errorf("save csv: %w", err)
	}
	if err := p.progress.Log(MsgSavedCSV); err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, p.cfg.Database.Driver, p.cfg.Database.DSN, p.logger)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			p.logger.Warn().Err(cerr).Msg("closing database")
		}
	}()
	if err := p.progress.Log(MsgConnected); err != nil {
		return nil, err
	}

	if err := db.WriteTable(ctx, table, p.cfg.Database.Table); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := p.progress.Log(MsgLoaded); err != nil {
		return nil, err
	}

	if err := db.RunQueries(ctx, p.out, p.cfg.Queries); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if err := p.progress.Log(MsgComplete); err != nil {
		return nil, err
	}

	return table, nil
}
