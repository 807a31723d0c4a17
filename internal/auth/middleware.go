package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/mrossig/vidriera/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware verifies the access token and injects its claims into the
// request context. The token is read from the Authorization header first,
// then from the accessToken cookie set on login. Refresh tokens never pass:
// they are signed with the other secret.
func AuthMiddleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				writeUnauthorized(w)
				return
			}

			claims, err := tm.ValidateAccessToken(tokenString)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts verified access claims from the request context.
// Returns nil when the request did not pass AuthMiddleware.
func GetUserFromContext(r *http.Request) *models.AccessClaims {
	claims, ok := r.Context().Value(userContextKey).(*models.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if token, err := GetAccessTokenCookie(r); err == nil {
		return token
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
}
