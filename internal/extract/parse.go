package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// marketCapCleaner drops line breaks and thousands separators the source
// markup scatters through numeric cells.
var marketCapCleaner = strings.NewReplacer(
	"\r", "",
	"\n", "",
	",", "",
	"\u00a0", "",
)

// CleanMarketCap returns the numeric text of a market-cap cell.
func CleanMarketCap(s string) string {
	return strings.TrimSpace(marketCapCleaner.Replace(s))
}

// ParseMarketCap parses a market-cap cell into billions.
func ParseMarketCap(s string) (decimal.Decimal, error) {
	clean := CleanMarketCap(s)
	if clean == "" {
		return decimal.Decimal{}, fmt.Errorf("empty market cap")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing market cap %q: %w", clean, err)
	}
	return d, nil
}
