package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskboard/taskboard-backend/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "authClaims"

// authenticate verifies the session token from the Authorization header or
// the token cookie and attaches the claims to the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if token == "" {
			if cookie, err := r.Cookie("token"); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestClaims returns the claims the middleware stored, or nil on routes
// without authentication.
func requestClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims
}
