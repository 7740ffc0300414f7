package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookpulse/bookpulse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the sales ledger.
// Every query joins through books so results are always scoped to the
// owning user.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `s.id, s.book_id, s.date, s.units, s.revenue, s.royalty, s.platform, s.created_at, b.title`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.BookID, &s.Date, &s.Units, &s.Revenue, &s.Royalty, &s.Platform, &s.CreatedAt, &s.BookTitle)
	return s, err
}

// CreateSale inserts one ledger entry. The insert is conditional on the
// book belonging to params.UserID; otherwise ErrNotFound is returned
// and nothing is written.
func (r *Repository) CreateSale(ctx context.Context, params CreateSaleParams) (Sale, error) {
	const query = `
WITH ins AS (
	INSERT INTO sales (id, book_id, date, units, revenue, royalty, platform)
	SELECT $1, b.id, $2, $3, $4, $5, $6
	FROM books b
	WHERE b.id = $7 AND b.user_id = $8
	RETURNING id, book_id, date, units, revenue, royalty, platform, created_at
)
SELECT ins.id, ins.book_id, ins.date, ins.units, ins.revenue, ins.royalty, ins.platform, ins.created_at, b.title
FROM ins JOIN books b ON b.id = ins.book_id`

	sale, err := scanSale(r.pool.QueryRow(ctx, query,
		uuid.New(), params.Date, params.Units, params.Revenue, params.Royalty,
		params.Platform, params.BookID, params.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, fmt.Errorf("ledger: create sale: %w", err)
	}
	return sale, nil
}

// GetSale returns one sale owned by userID.
func (r *Repository) GetSale(ctx context.Context, id, userID uuid.UUID) (Sale, error) {
	query := `SELECT ` + saleColumns + `
FROM sales s JOIN books b ON b.id = s.book_id
WHERE s.id = $1 AND b.user_id = $2`

	sale, err := scanSale(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, fmt.Errorf("ledger: get sale: %w", err)
	}
	return sale, nil
}

// UpdateSale replaces every mutable field of a sale owned by userID.
func (r *Repository) UpdateSale(ctx context.Context, id, userID uuid.UUID, params CreateSaleParams) (Sale, error) {
	const query = `
WITH upd AS (
	UPDATE sales s SET date = $1, units = $2, revenue = $3, royalty = $4, platform = $5
	FROM books b
	WHERE s.id = $6 AND s.book_id = b.id AND b.user_id = $7
	RETURNING s.id, s.book_id, s.date, s.units, s.revenue, s.royalty, s.platform, s.created_at
)
SELECT upd.id, upd.book_id, upd.date, upd.units, upd.revenue, upd.royalty, upd.platform, upd.created_at, b.title
FROM upd JOIN books b ON b.id = upd.book_id`

	sale, err := scanSale(r.pool.QueryRow(ctx, query,
		params.Date, params.Units, params.Revenue, params.Royalty, params.Platform, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, fmt.Errorf("ledger: update sale: %w", err)
	}
	return sale, nil
}

// DeleteSale removes one sale owned by userID.
func (r *Repository) DeleteSale(ctx context.Context, id, userID uuid.UUID) error {
	const query = `
DELETE FROM sales s USING books b
WHERE s.id = $1 AND s.book_id = b.id AND b.user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("ledger: delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func buildFilter(req ListSalesRequest) (string, []any) {
	conds := []string{"b.user_id = $1"}
	args := []any{req.UserID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if req.BookID != nil {
		add("s.book_id = $%d", *req.BookID)
	}
	if req.Platform != nil {
		add("s.platform = $%d", *req.Platform)
	}
	if req.StartDate != nil {
		add("s.date >= $%d", *req.StartDate)
	}
	if req.EndDate != nil {
		add("s.date <= $%d", *req.EndDate)
	}
	return strings.Join(conds, " AND "), args
}

// ListSales returns the filtered page ordered by date descending, plus
// the total row count for the filter.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	where, args := buildFilter(req)
	limit, offset := shared.ClampPage(req.Limit, req.Offset)

	query := fmt.Sprintf(`SELECT %s
FROM sales s JOIN books b ON b.id = s.book_id
WHERE %s
ORDER BY s.date DESC, s.created_at DESC
LIMIT %d OFFSET %d`, saleColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger: list sales: %w", err)
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ledger: scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ledger: list sales: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*)
FROM sales s JOIN books b ON b.id = s.book_id
WHERE %s`, where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ledger: count sales: %w", err)
	}
	return sales, total, nil
}

// SumSales computes the overview totals for one filtered slice.
// Sums run inside Postgres over NUMERIC columns, so the result is exact
// regardless of accumulation order.
func (r *Repository) SumSales(ctx context.Context, req ListSalesRequest) (Totals, error) {
	where, args := buildFilter(req)
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(s.units), 0),
	COALESCE(SUM(s.revenue), 0), COALESCE(SUM(s.royalty), 0)
FROM sales s JOIN books b ON b.id = s.book_id
WHERE %s`, where)

	var t Totals
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.Count, &t.Units, &t.Revenue, &t.Royalty); err != nil {
		return Totals{}, fmt.Errorf("ledger: sum sales: %w", err)
	}
	return t, nil
}

// SumSalesByPlatform computes one totals row per distinct platform,
// ordered by platform for deterministic output.
func (r *Repository) SumSalesByPlatform(ctx context.Context, req ListSalesRequest) ([]PlatformTotals, error) {
	where, args := buildFilter(req)
	query := fmt.Sprintf(`SELECT s.platform, COUNT(*), COALESCE(SUM(s.units), 0),
	COALESCE(SUM(s.revenue), 0), COALESCE(SUM(s.royalty), 0)
FROM sales s JOIN books b ON b.id = s.book_id
WHERE %s
GROUP BY s.platform
ORDER BY s.platform`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: sum by platform: %w", err)
	}
	defer rows.Close()

	result := []PlatformTotals{}
	for rows.Next() {
		var row PlatformTotals
		if err := rows.Scan(&row.Platform, &row.Count, &row.Units, &row.Revenue, &row.Royalty); err != nil {
			return nil, fmt.Errorf("ledger: scan platform totals: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: sum by platform: %w", err)
	}
	return result, nil
}

// SumSalesByMonth computes one totals row per calendar month of the
// sale date, newest month first.
func (r *Repository) SumSalesByMonth(ctx context.Context, req ListSalesRequest) ([]MonthTotals, error) {
	where, args := buildFilter(req)
	query := fmt.Sprintf(`SELECT to_char(date_trunc('month', s.date), 'YYYY-MM') AS month,
	COUNT(*), COALESCE(SUM(s.units), 0),
	COALESCE(SUM(s.revenue), 0), COALESCE(SUM(s.royalty), 0)
FROM sales s JOIN books b ON b.id = s.book_id
WHERE %s
GROUP BY 1
ORDER BY 1 DESC`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: sum by month: %w", err)
	}
	defer rows.Close()

	result := []MonthTotals{}
	for rows.Next() {
		var row MonthTotals
		if err := rows.Scan(&row.Month, &row.Count, &row.Units, &row.Revenue, &row.Royalty); err != nil {
			return nil, fmt.Errorf("ledger: scan month totals: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: sum by month: %w", err)
	}
	return result, nil
}
