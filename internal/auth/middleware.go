package auth

import (
	"net/http"
	"strings"

	"github.com/bookpulse/bookpulse/internal/platform/httpx"
	"github.com/bookpulse/bookpulse/internal/shared"
)

// RequireAuth validates the bearer token and stores the user ID in the
// request context. Requests without a valid token never reach the
// protected handlers.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "access token required")
			return
		}
		userID, err := s.VerifyToken(token)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUser(r.Context(), userID)))
	})
}
