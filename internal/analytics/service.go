// Package analytics computes the aggregate views over a user's sales
// ledger: the overview totals plus breakdowns by platform and by
// calendar month. The three views total the same filtered slice and
// must always agree when their rows are summed.
package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/bookpulse/bookpulse/internal/ledger"
)

// Repository exposes the ledger sums the engine relies on.
type Repository interface {
	SumSales(ctx context.Context, req ledger.ListSalesRequest) (ledger.Totals, error)
	SumSalesByPlatform(ctx context.Context, req ledger.ListSalesRequest) ([]ledger.PlatformTotals, error)
	SumSalesByMonth(ctx context.Context, req ledger.ListSalesRequest) ([]ledger.MonthTotals, error)
}

// Overview is the full aggregate result for one filter.
type Overview struct {
	Overview          ledger.Totals           `json:"overview"`
	PlatformBreakdown []ledger.PlatformTotals `json:"platformBreakdown"`
	MonthlyBreakdown  []ledger.MonthTotals    `json:"monthlyBreakdown"`
}

// Service coordinates aggregate computation with the cache layer.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func dateToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// GetOverview returns the three aggregate views for the user's ledger
// slice between from and to (inclusive, each optional). Results come
// from the cache when the ledger has not changed since it was filled;
// concurrent identical requests collapse into one computation.
func (s *Service) GetOverview(ctx context.Context, userID uuid.UUID, from, to *time.Time) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "overview", userID.String(), dateToken(from), dateToken(to))
	if err != nil {
		return Overview{}, err
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		var overview Overview
		err := s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (any, error) {
			return s.compute(ctx, userID, from, to)
		})
		return overview, err
	})
	if err != nil {
		return Overview{}, err
	}
	return result.(Overview), nil
}

func (s *Service) compute(ctx context.Context, userID uuid.UUID, from, to *time.Time) (Overview, error) {
	req := ledger.ListSalesRequest{UserID: userID, StartDate: from, EndDate: to}

	totals, err := s.repo.SumSales(ctx, req)
	if err != nil {
		return Overview{}, err
	}
	platforms, err := s.repo.SumSalesByPlatform(ctx, req)
	if err != nil {
		return Overview{}, err
	}
	monthly, err := s.repo.SumSalesByMonth(ctx, req)
	if err != nil {
		return Overview{}, err
	}

	result := Overview{
		Overview:          totals,
		PlatformBreakdown: platforms,
		MonthlyBreakdown:  monthly,
	}

	// The three views are read in separate statements, so a write
	// landing between them can skew one against the others. Detect the
	// skew and recompute once rather than serving views that disagree.
	if !consistent(result) {
		if s.logger != nil {
			s.logger.Warn("aggregate views disagreed, recomputing", slog.String("user_id", userID.String()))
		}
		return s.computeOnce(ctx, req)
	}
	return result, nil
}

func (s *Service) computeOnce(ctx context.Context, req ledger.ListSalesRequest) (Overview, error) {
	totals, err := s.repo.SumSales(ctx, req)
	if err != nil {
		return Overview{}, err
	}
	platforms, err := s.repo.SumSalesByPlatform(ctx, req)
	if err != nil {
		return Overview{}, err
	}
	monthly, err := s.repo.SumSalesByMonth(ctx, req)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Overview: totals, PlatformBreakdown: platforms, MonthlyBreakdown: monthly}, nil
}

// consistent reports whether both breakdowns total exactly to the
// overview. Decimal comparison is exact; summation order cannot drift.
func consistent(o Overview) bool {
	var pCount, pUnits int64
	pRevenue, pRoyalty := decimal.Zero, decimal.Zero
	for _, p := range o.PlatformBreakdown {
		pCount += p.Count
		pUnits += p.Units
		pRevenue = pRevenue.Add(p.Revenue)
		pRoyalty = pRoyalty.Add(p.Royalty)
	}

	var mCount, mUnits int64
	mRevenue, mRoyalty := decimal.Zero, decimal.Zero
	for _, m := range o.MonthlyBreakdown {
		mCount += m.Count
		mUnits += m.Units
		mRevenue = mRevenue.Add(m.Revenue)
		mRoyalty = mRoyalty.Add(m.Royalty)
	}

	t := o.Overview
	return pCount == t.Count && pUnits == t.Units &&
		pRevenue.Equal(t.Revenue) && pRoyalty.Equal(t.Royalty) &&
		mCount == t.Count && mUnits == t.Units &&
		mRevenue.Equal(t.Revenue) && mRoyalty.Equal(t.Royalty)
}
