package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/princekumarofficial/media-service/internal/types"
	"github.com/princekumarofficial/media-service/internal/utils/jwt"
	"github.com/princekumarofficial/media-service/internal/utils/response"
)

type contextKey string

const CuratorKey contextKey = "curator"

// AuthMiddleware creates a middleware that validates JWT tokens and extracts
// the curator identity
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Authorization header required")))
				return
			}

			// Check if the header starts with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid authorization header format")))
				return
			}

			// Extract the token
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Token not provided")))
				return
			}

			// Extract curator identity from token
			curatorID, curatorType, err := jwt.ExtractCuratorFromToken(token, jwtSecret)
			if err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid token")))
				return
			}

			// Add curator to request context
			curator := types.CuratorRef{ID: curatorID, Type: curatorType}
			ctx := context.WithValue(r.Context(), CuratorKey, curator)
			r = r.WithContext(ctx)

			// Call the next handler
			next.ServeHTTP(w, r)
		})
	}
}

// GetCuratorFromContext extracts the curator from the request context
func GetCuratorFromContext(ctx context.Context) (types.CuratorRef, bool) {
	curator, ok := ctx.Value(CuratorKey).(types.CuratorRef)
	return curator, ok
}
