package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookpulse/bookpulse/internal/ledger"
)

type mockStore struct {
	created    []ledger.CreateSaleParams
	calls      int
	failOnCall int
}

func (m *mockStore) CreateSale(_ context.Context, params ledger.CreateSaleParams) (ledger.Sale, error) {
	m.calls++
	if m.failOnCall > 0 && m.calls == m.failOnCall {
		return ledger.Sale{}, errors.New("insert failed")
	}
	m.created = append(m.created, params)
	return ledger.Sale{
		ID:       uuid.New(),
		BookID:   params.BookID,
		Date:     params.Date,
		Units:    params.Units,
		Revenue:  params.Revenue,
		Royalty:  params.Royalty,
		Platform: params.Platform,
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBatch() Batch {
	return Batch{UserID: uuid.New(), BookID: uuid.New(), Platform: "Amazon KDP"}
}

func runCSV(t *testing.T, store LedgerStore, csv string) (Summary, error) {
	t.Helper()
	src, err := NewCSVSource(strings.NewReader(csv))
	require.NoError(t, err)
	return NewIngestor(store, testLogger()).Run(context.Background(), src, testBatch())
}

func TestRunPartialFailure(t *testing.T) {
	store := &mockStore{}
	summary, err := runCSV(t, store,
		"date,quantity,price\n"+
			"2024-01-15,12,49.90\n"+
			"2024-01-16,-1,10.00\n"+
			"2024-01-17,8,49.90\n")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRows)
	assert.Len(t, summary.Created, 2)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, `row 2: invalid units: "-1"`, summary.Errors[0])

	units := 0
	revenue := decimal.Zero
	for _, p := range store.created {
		units += p.Units
		revenue = revenue.Add(p.Revenue)
	}
	assert.Equal(t, 20, units)
	assert.True(t, revenue.Equal(decimal.RequireFromString("99.80")), "got %s", revenue)
}

func TestRunAllRowsInvalid(t *testing.T) {
	store := &mockStore{}
	summary, err := runCSV(t, store,
		"date,units\n"+
			"garbage,1\n"+
			",2\n")
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Equal(t, 2, summary.TotalRows)
	assert.Empty(t, summary.Created)
	assert.Len(t, summary.Errors, 2)
	assert.Empty(t, store.created)
}

func TestRunErrorListsEveryField(t *testing.T) {
	store := &mockStore{}
	summary, err := runCSV(t, store,
		"date,units,revenue\n"+
			"bad-date,-1,oops\n"+
			"2024-01-15,1,5.00\n")
	require.NoError(t, err)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, `row 1: invalid date: "bad-date"; invalid units: "-1"; invalid revenue: "oops"`, summary.Errors[0])
}

func TestRunCommitFailureDoesNotStopBatch(t *testing.T) {
	store := &mockStore{failOnCall: 1}
	summary, err := runCSV(t, store,
		"date,units\n"+
			"2024-01-15,1\n"+
			"2024-01-16,2\n")
	require.NoError(t, err, "a commit failure is a row error, not a batch error")

	assert.Len(t, summary.Created, 1)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "row 1: failed to create sale record", summary.Errors[0])
}

func TestRunUnreadableLineDoesNotStopBatch(t *testing.T) {
	// A bare quote inside an unquoted field makes the line unreadable;
	// the reader recovers at the next line.
	store := &mockStore{}
	summary, err := runCSV(t, store,
		"date,units\n"+
			"2024-01-15,1\"x\n"+
			"2024-01-16,2\n")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalRows, "unreadable lines still count as rows")
	require.Len(t, summary.Created, 1)
	assert.Equal(t, 2, summary.Created[0].Units)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "row 1: unreadable line", summary.Errors[0])
}

func TestRunStampsBatchIdentity(t *testing.T) {
	store := &mockStore{}
	src, err := NewCSVSource(strings.NewReader("date\n2024-01-15\n"))
	require.NoError(t, err)

	batch := testBatch()
	_, err = NewIngestor(store, testLogger()).Run(context.Background(), src, batch)
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, batch.UserID, store.created[0].UserID)
	assert.Equal(t, batch.BookID, store.created[0].BookID)
	assert.Equal(t, batch.Platform, store.created[0].Platform)
	assert.Equal(t, 1, store.created[0].Units, "absent units default to one")
}

func TestRunRowsCommittedInOrder(t *testing.T) {
	store := &mockStore{}
	summary, err := runCSV(t, store,
		"date,units\n"+
			"2024-01-15,1\n"+
			"2024-01-16,2\n"+
			"2024-01-17,3\n")
	require.NoError(t, err)

	require.Len(t, summary.Created, 3)
	for i, p := range store.created {
		assert.Equal(t, i+1, p.Units)
	}
}
