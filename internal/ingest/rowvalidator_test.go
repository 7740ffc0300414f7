package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRowDefaults(t *testing.T) {
	input, errs := ValidateRow(ResolvedRow{FieldDate: "2024-01-15"})
	require.Empty(t, errs)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), input.Date)
	assert.Equal(t, 1, input.Units)
	assert.True(t, input.Revenue.IsZero())
	assert.True(t, input.Royalty.IsZero())
}

func TestValidateRowFullRow(t *testing.T) {
	input, errs := ValidateRow(ResolvedRow{
		FieldDate:    "2024-01-15",
		FieldUnits:   "5",
		FieldRevenue: "24.99",
		FieldRoyalty: "8.75",
	})
	require.Empty(t, errs)

	assert.Equal(t, 5, input.Units)
	assert.True(t, input.Revenue.Equal(decimal.RequireFromString("24.99")))
	assert.True(t, input.Royalty.Equal(decimal.RequireFromString("8.75")))
}

func TestValidateRowMissingDateFails(t *testing.T) {
	_, errs := ValidateRow(ResolvedRow{FieldUnits: "3"})
	require.Len(t, errs, 1)
	assert.Equal(t, FieldDate, errs[0].Field)
}

func TestValidateRowCollectsAllErrors(t *testing.T) {
	input, errs := ValidateRow(ResolvedRow{
		FieldDate:    "not-a-date",
		FieldUnits:   "-1",
		FieldRevenue: "abc",
		FieldRoyalty: "-0.50",
	})
	require.Len(t, errs, 4)

	fields := make([]Field, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, []Field{FieldDate, FieldUnits, FieldRevenue, FieldRoyalty}, fields)
	assert.Equal(t, RowInput{}, input, "a failed row yields the zero input")
}

func TestValidateRowRejectsNegativeUnits(t *testing.T) {
	_, errs := ValidateRow(ResolvedRow{FieldDate: "2024-01-15", FieldUnits: "-1"})
	require.Len(t, errs, 1)
	assert.Equal(t, FieldUnits, errs[0].Field)
	assert.Equal(t, "-1", errs[0].Value)
}

func TestValidateRowRejectsSubCentMoney(t *testing.T) {
	_, errs := ValidateRow(ResolvedRow{FieldDate: "2024-01-15", FieldRevenue: "1.999"})
	require.Len(t, errs, 1)
	assert.Equal(t, FieldRevenue, errs[0].Field)
}

func TestValidateRowAcceptsZeroUnits(t *testing.T) {
	input, errs := ValidateRow(ResolvedRow{FieldDate: "2024-01-15", FieldUnits: "0"})
	require.Empty(t, errs)
	assert.Equal(t, 0, input.Units)
}

func TestValidateRowDateFormats(t *testing.T) {
	for _, raw := range []string{
		"2024-01-15",
		"2024-01-15T00:00:00Z",
		"2024-01-15 10:30:00",
		"01/15/2024",
	} {
		input, errs := ValidateRow(ResolvedRow{FieldDate: raw})
		require.Empty(t, errs, "date %q", raw)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), input.Date, "date %q", raw)
	}
}

func TestRowErrorMessage(t *testing.T) {
	err := RowError{Field: FieldUnits, Value: "many"}
	assert.Equal(t, `invalid units: "many"`, err.Error())
}
