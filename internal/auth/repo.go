package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookpulse/bookpulse/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, username, password_hash, first_name, last_name, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a new user. A unique-violation on email or
// username surfaces as shared.ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, email, username, passwordHash string, firstName, lastName *string) (User, error) {
	const query = `
INSERT INTO users (id, email, username, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, uuid.New(), email, username, passwordHash, firstName, lastName))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, shared.ErrDuplicate
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}
	return u, nil
}

// FindByEmail returns the user with the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("auth: find by email: %w", err)
	}
	return u, nil
}

// FindByID returns the user with the given ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("auth: find by id: %w", err)
	}
	return u, nil
}
