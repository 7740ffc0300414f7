package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookpulse/bookpulse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for books.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bookColumns = `id, user_id, title, isbn, description, cover_image, published_at, created_at, updated_at`

func scanBook(row pgx.Row, withCount bool) (Book, error) {
	var b Book
	dest := []any{&b.ID, &b.UserID, &b.Title, &b.ISBN, &b.Description, &b.CoverImage, &b.PublishedAt, &b.CreatedAt, &b.UpdatedAt}
	if withCount {
		dest = append(dest, &b.SalesCount)
	}
	return b, row.Scan(dest...)
}

// ListBooks returns the user's books, newest first, each with its
// sale count.
func (r *Repository) ListBooks(ctx context.Context, userID uuid.UUID) ([]Book, error) {
	const query = `
SELECT ` + bookColumns + `,
	(SELECT COUNT(*) FROM sales s WHERE s.book_id = books.id) AS sales_count
FROM books
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("books: list: %w", err)
	}
	defer rows.Close()

	result := []Book{}
	for rows.Next() {
		b, err := scanBook(rows, true)
		if err != nil {
			return nil, fmt.Errorf("books: scan: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("books: list: %w", err)
	}
	return result, nil
}

// GetBook returns one book owned by userID.
func (r *Repository) GetBook(ctx context.Context, id, userID uuid.UUID) (Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1 AND user_id = $2`
	b, err := scanBook(r.pool.QueryRow(ctx, query, id, userID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, shared.ErrNotFound
		}
		return Book{}, fmt.Errorf("books: get: %w", err)
	}
	return b, nil
}

// CreateBook inserts a book for userID.
func (r *Repository) CreateBook(ctx context.Context, userID uuid.UUID, title string, isbn, description, coverImage *string, publishedAt *time.Time) (Book, error) {
	const query = `
INSERT INTO books (id, user_id, title, isbn, description, cover_image, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + bookColumns

	b, err := scanBook(r.pool.QueryRow(ctx, query, uuid.New(), userID, title, isbn, description, coverImage, publishedAt), false)
	if err != nil {
		return Book{}, fmt.Errorf("books: create: %w", err)
	}
	return b, nil
}

// UpdateBook replaces every mutable field of an owned book. The owning
// user never changes.
func (r *Repository) UpdateBook(ctx context.Context, id, userID uuid.UUID, title string, isbn, description, coverImage *string, publishedAt *time.Time) (Book, error) {
	const query = `
UPDATE books SET title = $1, isbn = $2, description = $3, cover_image = $4, published_at = $5, updated_at = now()
WHERE id = $6 AND user_id = $7
RETURNING ` + bookColumns

	b, err := scanBook(r.pool.QueryRow(ctx, query, title, isbn, description, coverImage, publishedAt, id, userID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, shared.ErrNotFound
		}
		return Book{}, fmt.Errorf("books: update: %w", err)
	}
	return b, nil
}

// DeleteBook removes an owned book. Its sales go with it via the
// ON DELETE CASCADE constraint, so no orphan ledger rows remain.
func (r *Repository) DeleteBook(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("books: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
