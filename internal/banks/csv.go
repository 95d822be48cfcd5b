// Package banks reads and writes the Largest_banks_data.csv output.
package banks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banketl/banketl/internal/model"
)

// ErrIO is returned when the output file cannot be written or read.
var ErrIO = errors.New("csv output I/O failed")

// Header is the CSV header for Largest_banks_data.csv.
var Header = strings.Join(model.Columns, ",")

const (
	numFields = 5
	colName   = 0
	colUSD    = 1
	colGBP    = 2
	colINR    = 3
	colEUR    = 4
)

// ReadTable reads all records from a bank CSV reader.
func ReadTable(r io.Reader) (model.ResultTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading banks CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var table model.ResultTable
	for i, rec := range records[1:] {
		row, err := UnmarshalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		table = append(table, row)
	}
	return table, nil
}

// WriteTable writes records to a bank CSV writer (including header).
func WriteTable(w io.Writer, table model.ResultTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range table {
		if err := cw.Write(MarshalRecord(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a record to a CSV row ([]string).
func MarshalRecord(rec model.EnrichedBankRecord) []string {
	row := make([]string, numFields)
	row[colName] = rec.Name
	row[colUSD] = rec.MarketCapUSD.String()
	row[colGBP] = rec.MarketCapGBP.StringFixed(2)
	row[colINR] = rec.MarketCapINR.StringFixed(2)
	row[colEUR] = rec.MarketCapEUR.StringFixed(2)
	return row
}

// UnmarshalRecord converts a CSV row to a record.
func UnmarshalRecord(record []string) (model.EnrichedBankRecord, error) {
	if len(record) != numFields {
		return model.EnrichedBankRecord{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var values [numFields]decimal.Decimal
	for col := colUSD; col <= colEUR; col++ {
		v, err := decimal.NewFromString(record[col])
		if err != nil {
			return model.EnrichedBankRecord{}, fmt.Errorf("parsing %s %q: %w", model.Columns[col], record[col], err)
		}
		values[col] = v
	}

	return model.EnrichedBankRecord{
		BankRecord: model.BankRecord{
			Name:         record[colName],
			MarketCapUSD: values[colUSD],
		},
		MarketCapGBP: values[colGBP],
		MarketCapINR: values[colINR],
		MarketCapEUR: values[colEUR],
	}, nil
}

// Save writes the table to path, replacing any existing file.
func Save(path string, table model.ResultTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating dir for %s: %w", ErrIO, path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	if err := WriteTable(f, table); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrIO, path, err)
	}
	return nil
}

// Load reads the bank CSV at path.
func Load(path string) (model.ResultTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	return ReadTable(f)
}
