package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Store is the ledger persistence surface the service depends on.
type Store interface {
	CreateSale(ctx context.Context, params CreateSaleParams) (Sale, error)
	GetSale(ctx context.Context, id, userID uuid.UUID) (Sale, error)
	UpdateSale(ctx context.Context, id, userID uuid.UUID, params CreateSaleParams) (Sale, error)
	DeleteSale(ctx context.Context, id, userID uuid.UUID) error
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	SumSales(ctx context.Context, req ListSalesRequest) (Totals, error)
	SumSalesByPlatform(ctx context.Context, req ListSalesRequest) ([]PlatformTotals, error)
	SumSalesByMonth(ctx context.Context, req ListSalesRequest) ([]MonthTotals, error)
}

// Invalidator is notified after every ledger mutation so cached
// aggregates are recomputed on next read.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service wraps ledger business rules.
type Service struct {
	store       Store
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService constructs a Service. invalidator may be nil.
func NewService(store Store, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{store: store, invalidator: invalidator, logger: logger}
}

func (s *Service) bump(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("aggregate cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) toParams(userID, bookID uuid.UUID, date, revenue, royalty string, units int, platform string) (CreateSaleParams, error) {
	day, err := ParseDate(date)
	if err != nil {
		return CreateSaleParams{}, fmt.Errorf("%w: date: %v", ErrInvalidField, err)
	}
	rev, err := ParseMoney(revenue)
	if err != nil {
		return CreateSaleParams{}, fmt.Errorf("%w: revenue: %v", ErrInvalidField, err)
	}
	roy, err := ParseMoney(royalty)
	if err != nil {
		return CreateSaleParams{}, fmt.Errorf("%w: royalty: %v", ErrInvalidField, err)
	}
	return CreateSaleParams{
		UserID:   userID,
		BookID:   bookID,
		Date:     day,
		Units:    units,
		Revenue:  rev,
		Royalty:  roy,
		Platform: platform,
	}, nil
}

// CreateSale records one directly entered sale. Ownership of the book
// is enforced by the store.
func (s *Service) CreateSale(ctx context.Context, userID uuid.UUID, req CreateSaleRequest) (Sale, error) {
	params, err := s.toParams(userID, req.BookID, req.Date, req.Revenue, req.Royalty, req.Units, req.Platform)
	if err != nil {
		return Sale{}, err
	}
	sale, err := s.store.CreateSale(ctx, params)
	if err != nil {
		return Sale{}, err
	}
	s.bump(ctx)
	return sale, nil
}

// GetSale returns one sale owned by userID.
func (s *Service) GetSale(ctx context.Context, id, userID uuid.UUID) (Sale, error) {
	return s.store.GetSale(ctx, id, userID)
}

// UpdateSale replaces all fields of an owned sale.
func (s *Service) UpdateSale(ctx context.Context, id, userID uuid.UUID, req UpdateSaleRequest) (Sale, error) {
	params, err := s.toParams(userID, uuid.Nil, req.Date, req.Revenue, req.Royalty, req.Units, req.Platform)
	if err != nil {
		return Sale{}, err
	}
	sale, err := s.store.UpdateSale(ctx, id, userID, params)
	if err != nil {
		return Sale{}, err
	}
	s.bump(ctx)
	return sale, nil
}

// DeleteSale removes an owned sale.
func (s *Service) DeleteSale(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.DeleteSale(ctx, id, userID); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// ListSales returns the filtered page and the total match count.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return s.store.ListSales(ctx, req)
}
