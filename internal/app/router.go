package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookpulse/bookpulse/internal/analytics"
	"github.com/bookpulse/bookpulse/internal/auth"
	"github.com/bookpulse/bookpulse/internal/books"
	"github.com/bookpulse/bookpulse/internal/ingest"
	"github.com/bookpulse/bookpulse/internal/ledger"
	"github.com/bookpulse/bookpulse/internal/platform/httpx"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	BooksHandler     *books.Handler
	SalesHandler     *ledger.Handler
	UploadHandler    *ingest.Handler
	AnalyticsHandler *analytics.Handler
	Pool             *pgxpool.Pool
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()
		status := map[string]any{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  "Connected",
		}
		if err := params.Pool.Ping(ctx); err != nil {
			params.Logger.Error("health check failed", slog.Any("error", err))
			status["status"] = "ERROR"
			status["database"] = "Disconnected"
			httpx.JSON(w, http.StatusInternalServerError, status)
			return
		}
		httpx.JSON(w, http.StatusOK, status)
	})

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.RequireAuth)
		r.Route("/api/books", params.BooksHandler.MountRoutes)
		r.Route("/api/sales", func(r chi.Router) {
			r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
			params.SalesHandler.MountRoutes(r)
		})
		r.Route("/api/upload", params.UploadHandler.MountRoutes)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "route not found")
	})

	return r
}
