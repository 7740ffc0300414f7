package shared

const (
	// DefaultLimit applies when a listing request omits limit.
	DefaultLimit = 100
	// MaxLimit caps a single listing page.
	MaxLimit = 1000
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// NewPagination computes pagination metadata. limit and offset are
// normalised the same way the listing queries normalise them, so the
// metadata always describes the page actually returned.
func NewPagination(limit, offset, total int) Pagination {
	limit, offset = ClampPage(limit, offset)
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: total > offset+limit,
	}
}

// ClampPage normalises limit/offset to their allowed ranges.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
