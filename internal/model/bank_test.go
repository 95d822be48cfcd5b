package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResultTableNames(t *testing.T) {
	table := ResultTable{
		{BankRecord: BankRecord{Name: "Alpha", MarketCapUSD: decimal.NewFromInt(500)}},
		{BankRecord: BankRecord{Name: "Beta", MarketCapUSD: decimal.NewFromInt(300)}},
	}
	assert.Equal(t, []string{"Alpha", "Beta"}, table.Names())
	assert.Empty(t, ResultTable{}.Names())
}

func TestExchangeRateTableRate(t *testing.T) {
	rates := ExchangeRateTable{
		"GBP": decimal.RequireFromString("0.8"),
		"EUR": decimal.RequireFromString("0.93"),
	}

	tests := []struct {
		code string
		ok   bool
	}{
		{"GBP", true},
		{"gbp", true},
		{" EUR ", true},
		{"INR", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := rates.Rate(tt.code)
		assert.Equal(t, tt.ok, ok, "Rate(%q)", tt.code)
	}

	assert.Equal(t, []string{"EUR", "GBP"}, rates.Codes())
}
