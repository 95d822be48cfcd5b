// Package transform derives GBP, INR and EUR market caps from USD figures.
package transform

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/banketl/banketl/internal/model"
	"github.com/banketl/banketl/internal/rates"
)

// ErrMissingRate is returned when a required currency is absent from the rate table.
var ErrMissingRate = errors.New("missing exchange rate")

// Currency codes every rate table must provide.
const (
	GBP = "GBP"
	INR = "INR"
	EUR = "EUR"
)

// RequiredCurrencies lists the codes checked before any record is converted.
var RequiredCurrencies = []string{GBP, INR, EUR}

// Places is the number of decimal places kept in derived columns.
const Places = 2

// Convert multiplies usd by rate and rounds half-to-even to Places.
func Convert(usd, rate decimal.Decimal) decimal.Decimal {
	return usd.Mul(rate).RoundBank(Places)
}

// Transform appends the converted columns to each record, preserving order.
func Transform(records []model.BankRecord, rateTable model.ExchangeRateTable) (model.ResultTable, error) {
	gbp, inr, eur, err := required(rateTable)
	if err != nil {
		return nil, err
	}

	out := make(model.ResultTable, len(records))
	for i, rec := range records {
		out[i] = model.EnrichedBankRecord{
			BankRecord:   rec,
			MarketCapGBP: Convert(rec.MarketCapUSD, gbp),
			MarketCapINR: Convert(rec.MarketCapUSD, inr),
			MarketCapEUR: Convert(rec.MarketCapUSD, eur),
		}
	}
	return out, nil
}

// TransformFile loads the exchange-rate CSV at path and calls Transform.
func TransformFile(records []model.BankRecord, path string) (model.ResultTable, error) {
	rateTable, err := rates.Load(path)
	if err != nil {
		return nil, err
	}
	return Transform(records, rateTable)
}

func required(rateTable model.ExchangeRateTable) (gbp, inr, eur decimal.Decimal, err error) {
	got := make([]decimal.Decimal, len(RequiredCurrencies))
	for i, code := range RequiredCurrencies {
		r, ok := rateTable.Rate(code)
		if !ok {
			return gbp, inr, eur, fmt.Errorf("%w: %s", ErrMissingRate, code)
		}
		got[i] = r
	}
	return got[0], got[1], got[2], nil
}
