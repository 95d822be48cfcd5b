package banks

import (
	"fmt"
	"strings"

	"github.com/banketl/banketl/internal/model"
)

// ValidationError describes a single rule violation in a result table.
type ValidationError struct {
	Rule        int
	Row         int
	Name        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [row %d %q]: %s", e.Rule, e.Row, e.Name, e.Description)
}

// ValidateTable checks a result table for suspicious rows. Rows are 1-based.
//
//  1. Every bank has a non-blank name.
//  2. USD market cap is positive.
//  3. Bank names are unique.
//  4. Derived columns share the sign of the USD column.
func ValidateTable(table model.ResultTable) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int, len(table))

	for i, rec := range table {
		row := i + 1

		if strings.TrimSpace(rec.Name) == "" {
			errs = append(errs, ValidationError{Rule: 1, Row: row, Name: rec.Name, Description: "empty bank name"})
		}

		if !rec.MarketCapUSD.IsPositive() {
			errs = append(errs, ValidationError{
				Rule:        2,
				Row:         row,
				Name:        rec.Name,
				Description: fmt.Sprintf("market cap %s is not positive", rec.MarketCapUSD),
			})
		}

		if first, dup := seen[rec.Name]; dup {
			errs = append(errs, ValidationError{
				Rule:        3,
				Row:         row,
				Name:        rec.Name,
				Description: fmt.Sprintf("duplicate of row %d", first),
			})
		} else {
			seen[rec.Name] = row
		}

		sign := rec.MarketCapUSD.Sign()
		for _, v := range []struct {
			col string
			val int
		}{
			{model.ColGBP, rec.MarketCapGBP.Sign()},
			{model.ColINR, rec.MarketCapINR.Sign()},
			{model.ColEUR, rec.MarketCapEUR.Sign()},
		} {
			if v.val != 0 && v.val != sign {
				errs = append(errs, ValidationError{
					Rule:        4,
					Row:         row,
					Name:        rec.Name,
					Description: fmt.Sprintf("%s sign differs from %s", v.col, model.ColUSD),
				})
			}
		}
	}

	return errs
}
