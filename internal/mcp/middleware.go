package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const playerIDKey contextKey = iota

// WithPlayerID returns a context carrying the acting player.
func WithPlayerID(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, playerIDKey, playerID)
}

// PlayerID extracts the acting player from context.
func PlayerID(ctx context.Context) string {
	v, _ := ctx.Value(playerIDKey).(string)
	return v
}

// PlayerResolver resolves a player ID from a bearer token.
type PlayerResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// BearerToken returns the token of an "Authorization: Bearer" header value.
func BearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver PlayerResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Protocol handshake runs before any credentials are known.
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			token := BearerToken(extra.Header.Get("Authorization"))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			playerID, err := resolver.ResolveTenant(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if playerID == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			return next(WithPlayerID(ctx, playerID), method, req)
		}
	}
}

// noAuthMiddleware acts as defaultPlayer when auth is disabled.
func noAuthMiddleware(defaultPlayer string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(WithPlayerID(ctx, defaultPlayer), method, req)
		}
	}
}
