package shared

import (
	"context"

	"github.com/google/uuid"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user ID in context.
func ContextWithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserFromContext extracts the authenticated user ID from context.
// The zero UUID means no user is attached.
func UserFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userContextKey{}).(uuid.UUID)
	return id
}
