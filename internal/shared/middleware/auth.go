package middleware

import (
	"context"
	"net/http"
	"strings"

	"horizon/internal/shared/auth"
)

type contextKey string

// UserIDKey holds the signed-in user's ID (a string) in the request context
const UserIDKey contextKey = "userID"

const sessionCookie = "access_token"

// UserID returns the signed-in user's ID, or "" when the request is anonymous
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// Auth rejects requests without a valid session token.
func Auth(jwt *auth.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(jwt, r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, claims.UserID)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through unchanged.
func OptionalAuth(jwt *auth.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := authenticate(jwt, r); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, claims.UserID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(jwt *auth.JWT, r *http.Request) (*auth.JWTClaims, bool) {
	token := bearerToken(r)
	if token == "" {
		return nil, false
	}
	claims, err := jwt.Validate(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// bearerToken reads the session cookie first, then the Authorization header
func bearerToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
