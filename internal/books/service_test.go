package books

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookpulse/bookpulse/internal/ledger"
	"github.com/bookpulse/bookpulse/internal/shared"
)

type mockBookStore struct {
	books map[uuid.UUID]Book
}

func newMockBookStore() *mockBookStore {
	return &mockBookStore{books: make(map[uuid.UUID]Book)}
}

func (m *mockBookStore) ListBooks(_ context.Context, userID uuid.UUID) ([]Book, error) {
	out := []Book{}
	for _, b := range m.books {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookStore) GetBook(_ context.Context, id, userID uuid.UUID) (Book, error) {
	b, ok := m.books[id]
	if !ok || b.UserID != userID {
		return Book{}, shared.ErrNotFound
	}
	return b, nil
}

func (m *mockBookStore) CreateBook(_ context.Context, userID uuid.UUID, title string, isbn, description, coverImage *string, publishedAt *time.Time) (Book, error) {
	b := Book{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		ISBN:        isbn,
		Description: description,
		CoverImage:  coverImage,
		PublishedAt: publishedAt,
		CreatedAt:   time.Now().UTC(),
	}
	m.books[b.ID] = b
	return b, nil
}

func (m *mockBookStore) UpdateBook(_ context.Context, id, userID uuid.UUID, title string, isbn, description, coverImage *string, publishedAt *time.Time) (Book, error) {
	b, ok := m.books[id]
	if !ok || b.UserID != userID {
		return Book{}, shared.ErrNotFound
	}
	b.Title = title
	b.ISBN = isbn
	b.Description = description
	b.CoverImage = coverImage
	b.PublishedAt = publishedAt
	m.books[id] = b
	return b, nil
}

func (m *mockBookStore) DeleteBook(_ context.Context, id, userID uuid.UUID) error {
	b, ok := m.books[id]
	if !ok || b.UserID != userID {
		return shared.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

type mockReader struct {
	lastReq ledger.ListSalesRequest
}

func (m *mockReader) SumSales(_ context.Context, req ledger.ListSalesRequest) (ledger.Totals, error) {
	m.lastReq = req
	return ledger.Totals{Count: 4, Units: 9, Revenue: decimal.RequireFromString("44.91"), Royalty: decimal.RequireFromString("31.43")}, nil
}

func (m *mockReader) SumSalesByPlatform(_ context.Context, req ledger.ListSalesRequest) ([]ledger.PlatformTotals, error) {
	return []ledger.PlatformTotals{{Platform: "Amazon KDP", Count: 4, Units: 9}}, nil
}

func (m *mockReader) SumSalesByMonth(_ context.Context, req ledger.ListSalesRequest) ([]ledger.MonthTotals, error) {
	return []ledger.MonthTotals{{Month: "2024-01", Count: 4, Units: 9}}, nil
}

type countingInvalidator struct {
	bumps int
}

func (c *countingInvalidator) Bump(context.Context) error {
	c.bumps++
	return nil
}

func newTestService(store Store, reader LedgerReader, inv ledger.Invalidator) *Service {
	return NewService(store, reader, inv, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func str(s string) *string { return &s }

func TestCreateBookParsesPublishedAt(t *testing.T) {
	svc := newTestService(newMockBookStore(), nil, nil)

	book, err := svc.CreateBook(context.Background(), uuid.New(), UpsertBookRequest{
		Title:       "The Midnight Compiler",
		ISBN:        str("978-1-0000-0001-1"),
		PublishedAt: str("2023-06-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, book.PublishedAt)
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), *book.PublishedAt)
}

func TestCreateBookBadPublishedAt(t *testing.T) {
	svc := newTestService(newMockBookStore(), nil, nil)

	_, err := svc.CreateBook(context.Background(), uuid.New(), UpsertBookRequest{
		Title:       "The Midnight Compiler",
		PublishedAt: str("last summer"),
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidField)
}

func TestGetBookOwnershipIsolation(t *testing.T) {
	store := newMockBookStore()
	svc := newTestService(store, nil, nil)
	owner := uuid.New()

	book, err := svc.CreateBook(context.Background(), owner, UpsertBookRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.GetBook(context.Background(), book.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound, "another user's book reads as missing")

	got, err := svc.GetBook(context.Background(), book.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestBookOwnedBy(t *testing.T) {
	store := newMockBookStore()
	svc := newTestService(store, nil, nil)
	owner := uuid.New()

	book, err := svc.CreateBook(context.Background(), owner, UpsertBookRequest{Title: "Mine"})
	require.NoError(t, err)

	assert.NoError(t, svc.BookOwnedBy(context.Background(), book.ID, owner))
	assert.ErrorIs(t, svc.BookOwnedBy(context.Background(), book.ID, uuid.New()), shared.ErrNotFound)
}

func TestDeleteBookBumpsCache(t *testing.T) {
	store := newMockBookStore()
	inv := &countingInvalidator{}
	svc := newTestService(store, nil, inv)
	owner := uuid.New()

	book, err := svc.CreateBook(context.Background(), owner, UpsertBookRequest{Title: "Mine"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(context.Background(), book.ID, owner))
	assert.Equal(t, 1, inv.bumps, "cascaded sale deletion must invalidate aggregates")
}

func TestDeleteBookNotFoundSkipsBump(t *testing.T) {
	inv := &countingInvalidator{}
	svc := newTestService(newMockBookStore(), nil, inv)

	err := svc.DeleteBook(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Zero(t, inv.bumps)
}

func TestStatsScopedToBook(t *testing.T) {
	store := newMockBookStore()
	reader := &mockReader{}
	svc := newTestService(store, reader, nil)
	owner := uuid.New()

	book, err := svc.CreateBook(context.Background(), owner, UpsertBookRequest{Title: "Mine"})
	require.NoError(t, err)

	got, stats, err := svc.Stats(context.Background(), book.ID, owner)
	require.NoError(t, err)

	assert.Equal(t, book.ID, got.ID)
	assert.Equal(t, int64(4), stats.Totals.Count)
	require.NotNil(t, reader.lastReq.BookID)
	assert.Equal(t, book.ID, *reader.lastReq.BookID)
	assert.Equal(t, owner, reader.lastReq.UserID)
}

func TestStatsUnownedBook(t *testing.T) {
	store := newMockBookStore()
	reader := &mockReader{}
	svc := newTestService(store, reader, nil)

	book, err := svc.CreateBook(context.Background(), uuid.New(), UpsertBookRequest{Title: "Mine"})
	require.NoError(t, err)

	_, _, err = svc.Stats(context.Background(), book.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, uuid.Nil, reader.lastReq.UserID, "ledger must not be read for unowned books")
}
