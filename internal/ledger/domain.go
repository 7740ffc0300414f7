package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the ledger's unit record. Revenue and royalty are exact
// decimals with two fractional digits; they are independent amounts
// (no royalty <= revenue rule).
type Sale struct {
	ID        uuid.UUID       `json:"id"`
	BookID    uuid.UUID       `json:"bookId"`
	Date      time.Time       `json:"date"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Royalty   decimal.Decimal `json:"royalty"`
	Platform  string          `json:"platform"`
	CreatedAt time.Time       `json:"createdAt"`
	BookTitle string          `json:"bookTitle,omitempty"`
}

// CreateSaleParams carries the fields for a new ledger entry. UserID
// scopes the write: the insert only happens when the book belongs to
// that user.
type CreateSaleParams struct {
	UserID   uuid.UUID
	BookID   uuid.UUID
	Date     time.Time
	Units    int
	Revenue  decimal.Decimal
	Royalty  decimal.Decimal
	Platform string
}

// CreateSaleRequest is the JSON payload for direct sale entry.
type CreateSaleRequest struct {
	BookID   uuid.UUID `json:"bookId" validate:"required"`
	Date     string    `json:"date" validate:"required"`
	Units    int       `json:"units" validate:"gte=0"`
	Revenue  string    `json:"revenue" validate:"required"`
	Royalty  string    `json:"royalty" validate:"required"`
	Platform string    `json:"platform" validate:"required,min=1,max=100"`
}

// UpdateSaleRequest replaces every mutable field of a sale. There are
// no partial ledger edits.
type UpdateSaleRequest struct {
	Date     string `json:"date" validate:"required"`
	Units    int    `json:"units" validate:"gte=0"`
	Revenue  string `json:"revenue" validate:"required"`
	Royalty  string `json:"royalty" validate:"required"`
	Platform string `json:"platform" validate:"required,min=1,max=100"`
}

// ListSalesRequest filters the ledger. All filters are optional except
// the owning user; date bounds are inclusive.
type ListSalesRequest struct {
	UserID    uuid.UUID
	BookID    *uuid.UUID
	Platform  *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Totals carries the aggregate sums over one slice of the ledger.
type Totals struct {
	Count   int64           `json:"totalSales"`
	Units   int64           `json:"totalUnits"`
	Revenue decimal.Decimal `json:"totalRevenue"`
	Royalty decimal.Decimal `json:"totalRoyalty"`
}

// PlatformTotals is one platform breakdown row.
type PlatformTotals struct {
	Platform string          `json:"platform"`
	Count    int64           `json:"totalSales"`
	Units    int64           `json:"totalUnits"`
	Revenue  decimal.Decimal `json:"totalRevenue"`
	Royalty  decimal.Decimal `json:"totalRoyalty"`
}

// MonthTotals is one monthly breakdown row. Month is the sale date
// truncated to calendar month, formatted YYYY-MM.
type MonthTotals struct {
	Month   string          `json:"month"`
	Count   int64           `json:"totalSales"`
	Units   int64           `json:"totalUnits"`
	Revenue decimal.Decimal `json:"totalRevenue"`
	Royalty decimal.Decimal `json:"totalRoyalty"`
}
