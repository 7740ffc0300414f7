package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bookpulse/bookpulse/internal/ledger"
)

// ErrEmptyBatch reports that no row in a batch survived validation.
// A batch that commits at least one row is a success even when sibling
// rows failed; a batch with zero valid rows is a failure.
var ErrEmptyBatch = errors.New("no valid sales data found")

// LedgerStore is the commit surface the ingestor writes through.
type LedgerStore interface {
	CreateSale(ctx context.Context, params ledger.CreateSaleParams) (ledger.Sale, error)
}

// Summary reports the outcome of one ingestion batch. Errors holds one
// human-readable entry per failed row, in input order.
type Summary struct {
	TotalRows int
	Created   []ledger.Sale
	Errors    []string
}

// Batch identifies the target of one ingestion run. The book must
// already be verified to belong to the user; the store enforces it
// again on every insert.
type Batch struct {
	UserID   uuid.UUID
	BookID   uuid.UUID
	Platform string
}

// Ingestor drives per-row resolution, validation and commit over a
// record stream.
type Ingestor struct {
	store  LedgerStore
	logger *slog.Logger
}

// NewIngestor constructs an Ingestor.
func NewIngestor(store LedgerStore, logger *slog.Logger) *Ingestor {
	return &Ingestor{store: store, logger: logger}
}

// Run processes the stream to completion. Rows are handled strictly in
// order and independently: a validation or commit failure is appended
// to the error list and processing continues, so rows committed before
// a later failure stay committed. Run returns ErrEmptyBatch when no row
// validated; any other returned error means the stream itself broke.
func (ing *Ingestor) Run(ctx context.Context, src RecordSource, batch Batch) (Summary, error) {
	summary := Summary{Created: []ledger.Sale{}}
	validRows := 0

	for rowNum := 1; ; rowNum++ {
		raw, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			summary.TotalRows++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: unreadable line", rowNum))
			ing.logger.Warn("skipping unreadable row", slog.Int("row", rowNum), slog.Any("error", err))
			continue
		}
		summary.TotalRows++

		input, rowErrs := ValidateRow(ResolveRow(raw))
		if len(rowErrs) > 0 {
			summary.Errors = append(summary.Errors, formatRowErrors(rowNum, rowErrs))
			continue
		}
		validRows++

		sale, err := ing.store.CreateSale(ctx, ledger.CreateSaleParams{
			UserID:   batch.UserID,
			BookID:   batch.BookID,
			Date:     input.Date,
			Units:    input.Units,
			Revenue:  input.Revenue,
			Royalty:  input.Royalty,
			Platform: batch.Platform,
		})
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: failed to create sale record", rowNum))
			ing.logger.Error("sale commit failed", slog.Int("row", rowNum), slog.Any("error", err))
			continue
		}
		summary.Created = append(summary.Created, sale)
	}

	if validRows == 0 {
		return summary, ErrEmptyBatch
	}
	return summary, nil
}

func formatRowErrors(rowNum int, errs []RowError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("row %d: %s", rowNum, strings.Join(parts, "; "))
}
