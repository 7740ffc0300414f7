package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookpulse/bookpulse/internal/ledger"
)

// RowInput is one validated, ledger-ready row.
type RowInput struct {
	Date    time.Time
	Units   int
	Revenue decimal.Decimal
	Royalty decimal.Decimal
}

// RowError describes one field that failed validation, carrying the raw
// value so export lines can be located and fixed.
type RowError struct {
	Field Field
	Value string
}

func (e RowError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

const absent = "absent"

// ValidateRow checks one resolved row. All field failures are collected
// rather than stopping at the first, and the function is pure and
// total: every input yields either a RowInput or a non-empty error
// list, never both, never a panic.
//
// Defaults per field: units 1, revenue 0, royalty 0. The date has no
// default; an absent or unparseable date fails the row.
func ValidateRow(row ResolvedRow) (RowInput, []RowError) {
	var input RowInput
	var errs []RowError

	rawDate, ok := row[FieldDate]
	if !ok {
		errs = append(errs, RowError{Field: FieldDate, Value: absent})
	} else if date, err := ledger.ParseDate(rawDate); err != nil {
		errs = append(errs, RowError{Field: FieldDate, Value: rawDate})
	} else {
		input.Date = date
	}

	if rawUnits, ok := row[FieldUnits]; !ok {
		input.Units = 1
	} else if units, err := strconv.Atoi(strings.TrimSpace(rawUnits)); err != nil || units < 0 {
		errs = append(errs, RowError{Field: FieldUnits, Value: rawUnits})
	} else {
		input.Units = units
	}

	input.Revenue = validateMoney(FieldRevenue, row, &errs)
	input.Royalty = validateMoney(FieldRoyalty, row, &errs)

	if len(errs) > 0 {
		return RowInput{}, errs
	}
	return input, nil
}

func validateMoney(field Field, row ResolvedRow, errs *[]RowError) decimal.Decimal {
	raw, ok := row[field]
	if !ok {
		return decimal.Zero
	}
	amount, err := ledger.ParseMoney(strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, RowError{Field: field, Value: raw})
		return decimal.Zero
	}
	return amount
}
