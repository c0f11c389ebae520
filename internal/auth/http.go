// ABOUTME: HTTP middleware for JWT authentication on the JSON API
// ABOUTME: Extracts JWT from Authorization header and adds the user to context

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ledgerview/ledgerview/internal/store"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const userIDContextKey contextKey = "api_user_id"

// UserIDFromContext returns the authenticated user ID, or "" if none.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDContextKey).(string)
	return id
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// APIUserStore is the subset of the store the middleware needs.
type APIUserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// APIAuthMiddleware creates an HTTP middleware that validates bearer JWTs
// and confirms the subject still exists before letting the request through.
func APIAuthMiddleware(users APIUserStore, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			if _, err := users.GetUser(r.Context(), userID); err != nil {
				http.Error(w, `{"error":"user not found"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
