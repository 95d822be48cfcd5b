package model

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ExchangeRateTable maps an upper-case currency code to its rate against USD.
type ExchangeRateTable map[string]decimal.Decimal

// Rate returns the rate for a currency code.
func (t ExchangeRateTable) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Codes returns the currency codes sorted alphabetically.
func (t ExchangeRateTable) Codes() []string {
	codes := make([]string, 0, len(t))
	for c := range t {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
