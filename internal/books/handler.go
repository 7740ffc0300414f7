package books

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookpulse/bookpulse/internal/ledger"
	"github.com/bookpulse/bookpulse/internal/platform/httpx"
	"github.com/bookpulse/bookpulse/internal/shared"
)

// Handler manages book endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers book routes. The router is expected to sit
// behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listBooks)
	r.Post("/", h.createBook)
	r.Get("/{id}", h.getBook)
	r.Put("/{id}", h.updateBook)
	r.Delete("/{id}", h.deleteBook)
	r.Get("/{id}/stats", h.bookStats)
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context(), shared.UserFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list books failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"books": books})
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid book id")
		return
	}
	book, err := h.service.GetBook(r.Context(), id, shared.UserFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"book": book})
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var req UpsertBookRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	book, err := h.service.CreateBook(r.Context(), shared.UserFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidField) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create book failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Book created successfully",
		"book":    book,
	})
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid book id")
		return
	}
	var req UpsertBookRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	book, err := h.service.UpdateBook(r.Context(), id, shared.UserFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidField) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("update book failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid book id")
		return
	}
	if err := h.service.DeleteBook(r.Context(), id, shared.UserFromContext(r.Context())); err != nil {
		h.logger.Error("delete book failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Book deleted successfully"})
}

func (h *Handler) bookStats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid book id")
		return
	}
	book, stats, err := h.service.Stats(r.Context(), id, shared.UserFromContext(r.Context()))
	if err != nil {
		h.logger.Error("book stats failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"book": map[string]any{
			"id":    book.ID,
			"title": book.Title,
		},
		"stats": stats,
	})
}
