package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookpulse/bookpulse/internal/ledger"
	"github.com/bookpulse/bookpulse/internal/platform/httpx"
	"github.com/bookpulse/bookpulse/internal/shared"
)

// Platforms is the fixed list of platform labels offered to uploaders.
// Free-text labels remain valid on direct entry; this list only feeds
// the upload form.
var Platforms = []string{
	"Amazon KDP",
	"Gumroad",
	"BookBaby",
	"IngramSpark",
	"Draft2Digital",
	"Smashwords",
	"Apple Books",
	"Google Play Books",
	"Kobo",
	"Barnes & Noble",
	"Other",
}

// csvTemplate is served with exactly the canonical headers.
const csvTemplate = `date,units,revenue,royalty
2024-01-15,5,24.99,8.75
2024-01-20,3,14.99,5.25
2024-02-01,8,39.99,14.00
`

// BookFinder verifies book ownership before any ledger access.
type BookFinder interface {
	BookOwnedBy(ctx context.Context, bookID, userID uuid.UUID) error
}

// Enqueuer schedules post-ingest background work.
type Enqueuer interface {
	EnqueueWarmup(ctx context.Context, userID uuid.UUID) error
}

// Handler manages upload endpoints.
type Handler struct {
	logger      *slog.Logger
	ingestor    *Ingestor
	books       BookFinder
	invalidator ledger.Invalidator
	enqueuer    Enqueuer
	maxBytes    int64
}

// NewHandler builds a Handler instance. invalidator and enqueuer may be
// nil.
func NewHandler(logger *slog.Logger, ingestor *Ingestor, books BookFinder, invalidator ledger.Invalidator, enqueuer Enqueuer, maxBytes int64) *Handler {
	return &Handler{
		logger:      logger,
		ingestor:    ingestor,
		books:       books,
		invalidator: invalidator,
		enqueuer:    enqueuer,
		maxBytes:    maxBytes,
	}
}

// MountRoutes registers upload routes. The router is expected to sit
// behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/csv", h.uploadCSV)
	r.Get("/template", h.template)
	r.Get("/platforms", h.platforms)
}

func (h *Handler) uploadCSV(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no CSV file uploaded")
		return
	}
	// The multipart form may have spilled to a temp file; always
	// release it once the batch is processed.
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	bookIDRaw := r.FormValue("bookId")
	platform := strings.TrimSpace(r.FormValue("platform"))
	if bookIDRaw == "" || platform == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "book ID and platform are required")
		return
	}
	if len(platform) > 100 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "platform must be at most 100 characters")
		return
	}
	bookID, err := uuid.Parse(bookIDRaw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid book ID")
		return
	}

	file, header, err := r.FormFile("csvFile")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no CSV file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	if name := strings.ToLower(header.Filename); !strings.HasSuffix(name, ".csv") {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "only CSV files are allowed")
		return
	}

	// Ownership is checked before a single row is read; an unowned book
	// is indistinguishable from a missing one.
	if err := h.books.BookOwnedBy(r.Context(), bookID, userID); err != nil {
		httpx.RespondError(w, err)
		return
	}

	src, err := NewCSVSource(file)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "could not read CSV file")
		return
	}

	summary, err := h.ingestor.Run(r.Context(), src, Batch{
		UserID:   userID,
		BookID:   bookID,
		Platform: platform,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyBatch) {
			httpx.JSON(w, http.StatusBadRequest, map[string]any{
				"message": "No valid sales data found in CSV file",
				"errors":  summary.Errors,
			})
			return
		}
		h.logger.Error("csv ingestion failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if h.invalidator != nil && len(summary.Created) > 0 {
		if err := h.invalidator.Bump(r.Context()); err != nil {
			h.logger.Warn("aggregate cache bump failed", slog.Any("error", err))
		}
	}
	if h.enqueuer != nil && len(summary.Created) > 0 {
		if err := h.enqueuer.EnqueueWarmup(r.Context(), userID); err != nil {
			h.logger.Warn("warmup enqueue failed", slog.Any("error", err))
		}
	}

	resp := map[string]any{
		"message": "CSV file processed successfully",
		"summary": map[string]any{
			"totalRows":    summary.TotalRows,
			"createdSales": len(summary.Created),
			"errorCount":   len(summary.Errors),
		},
		"sales": summary.Created,
	}
	if len(summary.Errors) > 0 {
		resp["errors"] = summary.Errors
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales_template.csv"`)
	_, _ = w.Write([]byte(csvTemplate))
}

func (h *Handler) platforms(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"platforms": Platforms})
}
