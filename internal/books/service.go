package books

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bookpulse/bookpulse/internal/ledger"
)

// Store is the book persistence surface the service depends on.
type Store interface {
	ListBooks(ctx context.Context, userID uuid.UUID) ([]Book, error)
	GetBook(ctx context.Context, id, userID uuid.UUID) (Book, error)
	CreateBook(ctx context.Context, userID uuid.UUID, title string, isbn, description, coverImage *string, publishedAt *time.Time) (Book, error)
	UpdateBook(ctx context.Context, id, userID uuid.UUID, title string, isbn, description, coverImage *string, publishedAt *time.Time) (Book, error)
	DeleteBook(ctx context.Context, id, userID uuid.UUID) error
}

// LedgerReader supplies the sums behind per-book statistics.
type LedgerReader interface {
	SumSales(ctx context.Context, req ledger.ListSalesRequest) (ledger.Totals, error)
	SumSalesByPlatform(ctx context.Context, req ledger.ListSalesRequest) ([]ledger.PlatformTotals, error)
	SumSalesByMonth(ctx context.Context, req ledger.ListSalesRequest) ([]ledger.MonthTotals, error)
}

// BookStats aggregates one book's ledger slice.
type BookStats struct {
	Totals    ledger.Totals           `json:"totals"`
	Platforms []ledger.PlatformTotals `json:"platformStats"`
	Monthly   []ledger.MonthTotals    `json:"monthlyStats"`
}

// Service wraps book business rules.
type Service struct {
	store       Store
	reader      LedgerReader
	invalidator ledger.Invalidator
	logger      *slog.Logger
}

// NewService constructs a Service. reader and invalidator may be nil
// when stats or caching are not wired.
func NewService(store Store, reader LedgerReader, invalidator ledger.Invalidator, logger *slog.Logger) *Service {
	return &Service{store: store, reader: reader, invalidator: invalidator, logger: logger}
}

func (s *Service) parseUpsert(req UpsertBookRequest) (*time.Time, error) {
	if req.PublishedAt == nil || *req.PublishedAt == "" {
		return nil, nil
	}
	t, err := ledger.ParseDate(*req.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: publishedAt: %v", ledger.ErrInvalidField, err)
	}
	return &t, nil
}

// ListBooks returns the user's books with sale counts.
func (s *Service) ListBooks(ctx context.Context, userID uuid.UUID) ([]Book, error) {
	return s.store.ListBooks(ctx, userID)
}

// GetBook returns one owned book.
func (s *Service) GetBook(ctx context.Context, id, userID uuid.UUID) (Book, error) {
	return s.store.GetBook(ctx, id, userID)
}

// BookOwnedBy reports whether the book belongs to the user, without
// returning the record. Used by collaborators to authorize ledger
// access.
func (s *Service) BookOwnedBy(ctx context.Context, bookID, userID uuid.UUID) error {
	_, err := s.store.GetBook(ctx, bookID, userID)
	return err
}

// CreateBook records a new book for the user.
func (s *Service) CreateBook(ctx context.Context, userID uuid.UUID, req UpsertBookRequest) (Book, error) {
	publishedAt, err := s.parseUpsert(req)
	if err != nil {
		return Book{}, err
	}
	return s.store.CreateBook(ctx, userID, req.Title, req.ISBN, req.Description, req.CoverImage, publishedAt)
}

// UpdateBook replaces all fields of an owned book.
func (s *Service) UpdateBook(ctx context.Context, id, userID uuid.UUID, req UpsertBookRequest) (Book, error) {
	publishedAt, err := s.parseUpsert(req)
	if err != nil {
		return Book{}, err
	}
	return s.store.UpdateBook(ctx, id, userID, req.Title, req.ISBN, req.Description, req.CoverImage, publishedAt)
}

// DeleteBook removes an owned book and, by cascade, all its sales.
func (s *Service) DeleteBook(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.DeleteBook(ctx, id, userID); err != nil {
		return err
	}
	if s.invalidator != nil {
		if err := s.invalidator.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("aggregate cache bump failed", slog.Any("error", err))
		}
	}
	return nil
}

// Stats aggregates the book's ledger slice across all three dimensions.
// Ownership is verified first; an unowned book reads as missing.
func (s *Service) Stats(ctx context.Context, id, userID uuid.UUID) (Book, BookStats, error) {
	book, err := s.store.GetBook(ctx, id, userID)
	if err != nil {
		return Book{}, BookStats{}, err
	}

	req := ledger.ListSalesRequest{UserID: userID, BookID: &id}
	totals, err := s.reader.SumSales(ctx, req)
	if err != nil {
		return Book{}, BookStats{}, err
	}
	platforms, err := s.reader.SumSalesByPlatform(ctx, req)
	if err != nil {
		return Book{}, BookStats{}, err
	}
	monthly, err := s.reader.SumSalesByMonth(ctx, req)
	if err != nil {
		return Book{}, BookStats{}, err
	}
	return book, BookStats{Totals: totals, Platforms: platforms, Monthly: monthly}, nil
}
