package analytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookpulse/bookpulse/internal/ledger"
	"github.com/bookpulse/bookpulse/internal/platform/httpx"
	"github.com/bookpulse/bookpulse/internal/shared"
)

// Handler manages analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers analytics routes. The router is expected to
// sit behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/overview", h.overview)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserFromContext(r.Context())
	q := r.URL.Query()

	var from, to *time.Time
	if raw := q.Get("startDate"); raw != "" {
		t, err := ledger.ParseDate(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid startDate")
			return
		}
		from = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := ledger.ParseDate(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid endDate")
			return
		}
		to = &t
	}

	overview, err := h.service.GetOverview(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("analytics overview failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}
