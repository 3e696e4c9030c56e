package middleware

import (
	"context"
	"errors"
	"net/http"

	"wardrobe-be/internal/auth"
	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/user"
	"wardrobe-be/internal/utils"

	"go.uber.org/zap"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// RequireAuth rejects requests without a live session token. Accepted
// requests carry the user id and token in their context.
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				transport.Unauthorized(w)
				return
			}

			u, err := authn.Authenticate(r.Context(), token)
			if errors.Is(err, user.ErrUnauthorized) || errors.Is(err, user.ErrUserNotFound) {
				logger.FromCtx(r.Context()).Debug("request not authenticated", zap.String("path", r.URL.Path))
				transport.Unauthorized(w)
				return
			}
			if err != nil {
				transport.InternalError(w, r, err)
				return
			}

			ctx := utils.SetUserContext(r.Context(), u.ID, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
