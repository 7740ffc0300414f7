package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookpulse/bookpulse/internal/platform/httpx"
	"github.com/bookpulse/bookpulse/internal/shared"
)

// Handler manages sale endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sale routes. The router is expected to sit
// behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSales)
	r.Post("/", h.createSale)
	r.Get("/{id}", h.getSale)
	r.Put("/{id}", h.updateSale)
	r.Delete("/{id}", h.deleteSale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserFromContext(r.Context())
	q := r.URL.Query()

	req := ListSalesRequest{UserID: userID, Limit: shared.DefaultLimit}
	if raw := q.Get("bookId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bookId")
			return
		}
		req.BookID = &id
	}
	if raw := q.Get("platform"); raw != "" {
		req.Platform = &raw
	}
	if raw := q.Get("startDate"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid startDate")
			return
		}
		req.StartDate = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid endDate")
			return
		}
		req.EndDate = &t
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	sales, total, err := h.service.ListSales(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales":      sales,
		"pagination": shared.NewPagination(req.Limit, req.Offset, total),
	})
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id, shared.UserFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.CreateSale(r.Context(), shared.UserFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrInvalidField) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create sale failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Sale created successfully",
		"sale":    sale,
	})
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	var req UpdateSaleRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.UpdateSale(r.Context(), id, shared.UserFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrInvalidField) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("update sale failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Sale updated successfully",
		"sale":    sale,
	})
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	if err := h.service.DeleteSale(r.Context(), id, shared.UserFromContext(r.Context())); err != nil {
		h.logger.Error("delete sale failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Sale deleted successfully"})
}
