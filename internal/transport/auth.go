package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type playerKey struct{}

// PlayerResolver resolves a player ID from a bearer token.
type PlayerResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// WithPlayer returns a context carrying playerID.
func WithPlayer(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, playerKey{}, playerID)
}

// PlayerFromContext returns the player ID from context, if present.
func PlayerFromContext(ctx context.Context) (string, bool) {
	playerID, ok := ctx.Value(playerKey{}).(string)
	return playerID, ok && playerID != ""
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver PlayerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				WriteError(w, nil, ErrUnauthorizedCode, "missing bearer token", nil)
				return
			}

			playerID, err := resolver.ResolveTenant(r.Context(), token)
			if err != nil || playerID == "" {
				WriteError(w, nil, ErrUnauthorizedCode, "invalid bearer token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), playerID)))
		})
	}
}

// DefaultPlayerMiddleware binds every request to playerID. It is used when
// auth is disabled.
func DefaultPlayerMiddleware(playerID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), playerID)))
		})
	}
}
