// Package rates reads and writes the Currency,Rate exchange-rate table.
package rates

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banketl/banketl/internal/model"
)

const (
	headerCurrency = "Currency"
	headerRate     = "Rate"
	numFields      = 2
)

// ReadRates reads an exchange-rate CSV. Columns are located by header name.
func ReadRates(r io.Reader) (model.ExchangeRateTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rates CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("reading rates CSV: empty file")
	}

	colCurrency, colRate, err := locateColumns(records[0])
	if err != nil {
		return nil, err
	}

	rates := make(model.ExchangeRateTable, len(records)-1)
	for i, rec := range records[1:] {
		code, rate, err := UnmarshalRate([]string{rec[colCurrency], rec[colRate]})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if _, dup := rates[code]; dup {
			return nil, fmt.Errorf("row %d: duplicate currency %q", i+2, code)
		}
		rates[code] = rate
	}
	return rates, nil
}

func locateColumns(header []string) (int, int, error) {
	colCurrency, colRate := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case headerCurrency:
			colCurrency = i
		case headerRate:
			colRate = i
		}
	}
	if colCurrency < 0 || colRate < 0 {
		return 0, 0, fmt.Errorf("rates header must contain %q and %q, got %v", headerCurrency, headerRate, header)
	}
	return colCurrency, colRate, nil
}

// WriteRates writes an exchange-rate CSV sorted by currency code.
func WriteRates(w io.Writer, rates model.ExchangeRateTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{headerCurrency, headerRate}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, code := range rates.Codes() {
		if err := cw.Write(MarshalRate(code, rates[code])); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRate converts a currency and rate to a CSV row.
func MarshalRate(code string, rate decimal.Decimal) []string {
	return []string{code, rate.String()}
}

// UnmarshalRate converts a Currency,Rate pair to a code and rate.
func UnmarshalRate(record []string) (string, decimal.Decimal, error) {
	if len(record) != numFields {
		return "", decimal.Decimal{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	code := strings.ToUpper(strings.TrimSpace(record[0]))
	if code == "" {
		return "", decimal.Decimal{}, fmt.Errorf("empty currency code")
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return "", decimal.Decimal{}, fmt.Errorf("parsing rate %q for %s: %w", record[1], code, err)
	}
	return code, rate, nil
}

// Load reads the exchange-rate CSV at path.
func Load(path string) (model.ExchangeRateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exchange rates: %w", err)
	}
	defer f.Close()

	rates, err := ReadRates(f)
	if err != nil {
		return nil, fmt.Errorf("reading exchange rates %s: %w", path, err)
	}
	return rates, nil
}

// Save writes rates to path, replacing any existing file.
func Save(path string, rates model.ExchangeRateTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating exchange rates file: %w", err)
	}
	defer f.Close()

	if err := WriteRates(f, rates); err != nil {
		return fmt.Errorf("writing exchange rates: %w", err)
	}
	return f.Close()
}

// Default returns the sample rates written by `banketl init`.
func Default() model.ExchangeRateTable {
	return model.ExchangeRateTable{
		"EUR": decimal.RequireFromString("0.93"),
		"GBP": decimal.RequireFromString("0.8"),
		"INR": decimal.RequireFromString("82.95"),
	}
}
