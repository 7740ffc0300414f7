package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidField marks request field values that fail domain parsing
// (bad date, negative or over-precise money). Handlers map it to a 400.
var ErrInvalidField = errors.New("invalid field")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDate parses a calendar date in any of the accepted layouts. The
// time component, if present, is discarded.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New("unparseable date")
}

// ParseMoney parses a non-negative monetary amount with at most two
// fractional digits. Amounts with more precision are rejected rather
// than silently rounded.
func ParseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative amount")
	}
	if d.Exponent() < -2 {
		return decimal.Zero, errors.New("more than two decimal places")
	}
	return d, nil
}
