// Package middleware provides HTTP middleware shared across services.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/biolocklabs/biolock-api/shared/auth"
)

type claimsContextKey struct{}

// ClaimsKey is the context key under which validated token claims are stored.
var ClaimsKey = claimsContextKey{}

// Authenticate returns middleware that validates the bearer token on incoming
// requests with the given authenticator. newClaims produces the claims value
// the token is parsed into; the validated claims are stored in the request
// context under ClaimsKey.
func Authenticate(jwtAuth *auth.JWTAuthenticator, newClaims func() jwt.Claims) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractBearerToken(r)
			if err != nil {
				respondUnauthorized(w, err.Error())
				return
			}

			claims := newClaims()
			if err := jwtAuth.Verify(tokenString, claims); err != nil {
				respondUnauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the validated claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(jwt.Claims)
	return claims, ok
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
