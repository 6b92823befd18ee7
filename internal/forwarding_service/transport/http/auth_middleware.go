package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const AuthenticatedOperatorContextKey = ContextKey("authenticatedOperator")

// AuthenticatedOperator is the dashboard identity extracted from the bearer token.
type AuthenticatedOperator struct {
	ID   string
	Role string
}

// AuthMiddleware validates the HS256 bearer token minted by the dashboard's auth
// layer and puts the operator identity on the request context.
func AuthMiddleware(accessSecret string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Authorization header missing")
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(accessSecret), nil
			})
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "Token validation failed", "error", err)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			operator := AuthenticatedOperator{}
			if sub, err := claims.GetSubject(); err == nil {
				operator.ID = sub
			}
			if role, ok := claims["role"].(string); ok {
				operator.Role = role
			}
			if operator.ID == "" {
				http.Error(w, "Token missing subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AuthenticatedOperatorContextKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorID returns the authenticated operator's ID, or empty when the route was
// mounted without the auth middleware (tests).
func actorID(ctx context.Context) string {
	if op, ok := ctx.Value(AuthenticatedOperatorContextKey).(AuthenticatedOperator); ok {
		return op.ID
	}
	return ""
}
