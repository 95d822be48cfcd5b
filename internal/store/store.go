// Package store loads the result table into a relational database and runs
// report queries against it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/rs/zerolog"

	"github.com/banketl/banketl/internal/model"
)

var (
	// ErrStorage is returned on connection, DDL or insert failure.
	ErrStorage = errors.New("storage failed")
	// ErrQuery is returned when a report query fails.
	ErrQuery = errors.New("query failed")
)

// Store wraps a database connection pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s database: %w", ErrStorage, dialect.Driver, err)
	}
	if dialect.Driver == DriverSQLite {
		// A single connection keeps in-memory databases and file locks consistent.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s database: %w", ErrStorage, dialect.Driver, err)
	}

	logger.Debug().Str("driver", dialect.Driver).Msg("connected to database")
	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect returns the SQL dialect in use.
func (s *Store) Dialect() Dialect { return s.dialect }

// WriteTable replaces table with the given rows, preserving order.
// The drop, create and inserts run in one transaction.
func (s *Store) WriteTable(ctx context.Context, rows model.ResultTable, table string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("%w: invalid table name %q", ErrStorage, table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", ErrStorage, err)
	}
	defer func() {
		// Rollback after a successful commit returns sql.ErrTxDone.
		if rx := tx.Rollback(); rx != nil && !errors.Is(rx, sql.ErrTxDone) {
			s.logger.Warn().Err(rx).Msg("rolling back table load")
		}
	}()

	for _, stmt := range []string{s.dropTableSQL(table), s.createTableSQL(table)} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: table %s: %q: %w", ErrStorage, table, stmt, err)
		}
	}

	if len(rows) > 0 {
		query, args := s.insertSQL(table, rows)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: inserting %d rows into %s: %w", ErrStorage, len(rows), table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing %s: %w", ErrStorage, table, err)
	}

	s.logger.Debug().Str("table", table).Int("rows", len(rows)).Msg("table loaded")
	return nil
}

func (s *Store) dropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + table
}

func (s *Store) createTableSQL(table string) string {
	ctb := s.dialect.Flavor.NewCreateTableBuilder().CreateTable(table)
	ctb.Define(model.ColName, s.dialect.TextType)
	for _, col := range model.Columns[1:] {
		ctb.Define(col, s.dialect.FloatType)
	}
	return ctb.String()
}

func (s *Store) insertSQL(table string, rows model.ResultTable) (string, []interface{}) {
	ib := s.dialect.Flavor.NewInsertBuilder().InsertInto(table)
	ib.Cols(model.Columns...)
	for _, r := range rows {
		ib.Values(
			r.Name,
			r.MarketCapUSD.InexactFloat64(),
			r.MarketCapGBP.InexactFloat64(),
			r.MarketCapINR.InexactFloat64(),
			r.MarketCapEUR.InexactFloat64(),
		)
	}
	return ib.BuildWithFlavor(s.dialect.Flavor)
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if !ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: invalid table name %q", ErrQuery, table)
	}
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(sb.As("COUNT(*)", "n")).From(table)
	query, args := sb.BuildWithFlavor(s.dialect.Flavor)

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrQuery, query, err)
	}
	return n, nil
}
