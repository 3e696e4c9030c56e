package utils

import (
	"context"

	"github.com/google/uuid"
)

// SetUserContext sets the authenticated caller into context (called by middleware)
func SetUserContext(ctx context.Context, id uuid.UUID, token string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserTokenKey, token)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetTokenFromContext returns the session token the caller authenticated with.
func GetTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(UserTokenKey).(string)
	return token
}
