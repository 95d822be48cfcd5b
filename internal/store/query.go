package store

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
)

// NullText is printed for SQL NULL values.
const NullText = "NULL"

// Result is a fully materialized query result with values rendered as text.
type Result struct {
	Columns []string
	Rows    [][]string
}

// Query runs a single statement and reads every row.
func (s *Store) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrQuery, query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: reading columns: %w", ErrQuery, query, err)
	}

	res := &Result{Columns: cols}
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %q: scanning row %d: %w", ErrQuery, query, len(res.Rows)+1, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i], err = formatValue(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: column %s: %w", ErrQuery, query, cols[i], err)
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrQuery, query, err)
	}
	return res, nil
}

func formatValue(v interface{}) (string, error) {
	if v == nil {
		return NullText, nil
	}
	return cast.ToStringE(v)
}

// RunQueries executes each statement in order, printing the statement and its
// result set to w. The first failure stops the sequence; output already
// written is left in place.
func (s *Store) RunQueries(ctx context.Context, w io.Writer, queries []string) error {
	for _, q := range queries {
		res, err := s.Query(ctx, q)
		if err != nil {
			return err
		}
		if err := Render(w, q, res); err != nil {
			return fmt.Errorf("%w: printing %q: %w", ErrQuery, q, err)
		}
	}
	return nil
}

// Render prints a statement followed by its result as a text table.
func Render(w io.Writer, query string, res *Result) error {
	if _, err := fmt.Fprintln(w, query); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(res.Rows)
	table.Render()

	_, err := fmt.Fprintln(w)
	return err
}
