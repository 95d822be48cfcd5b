package model

import (
	"github.com/shopspring/decimal"
)

// Column names shared by the CSV output and the database table.
const (
	ColName = "Name"
	ColUSD  = "MC_USD_Billion"
	ColGBP  = "MC_GBP_Billion"
	ColINR  = "MC_INR_Billion"
	ColEUR  = "MC_EUR_Billion"
)

// Columns lists the output columns in write order.
var Columns = []string{ColName, ColUSD, ColGBP, ColINR, ColEUR}

// ExtractColumns are the columns populated by extraction.
var ExtractColumns = []string{ColName, ColUSD}

// BankRecord is one bank scraped from the source table.
type BankRecord struct {
	Name         string
	MarketCapUSD decimal.Decimal // billions
}

// EnrichedBankRecord is a BankRecord with converted market caps appended.
type EnrichedBankRecord struct {
	BankRecord
	MarketCapGBP decimal.Decimal // rounded to 2 places
	MarketCapINR decimal.Decimal
	MarketCapEUR decimal.Decimal
}

// ResultTable holds enriched records in source page order.
type ResultTable []EnrichedBankRecord

// Names returns the bank names in table order.
func (t ResultTable) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Name
	}
	return names
}
