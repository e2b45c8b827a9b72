package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolocklabs/biolock-api/shared/auth"
)

func newClaims() jwt.Claims {
	return &jwt.RegisteredClaims{}
}

func authCall(t *testing.T, jwtAuth *auth.JWTAuthenticator, authHeader string) (*httptest.ResponseRecorder, jwt.Claims) {
	t.Helper()

	var gotClaims jwt.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	Authenticate(jwtAuth, newClaims)(next).ServeHTTP(rec, req)

	return rec, gotClaims
}

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("secret", "issuer", time.Hour)
	tokenStr, err := jwtAuth.Sign(jwtAuth.NewRegisteredClaims("user-1"))
	require.NoError(t, err)

	rec, claims := authCall(t, jwtAuth, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, claims)
	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("secret", "issuer", time.Hour)

	rec, _ := authCall(t, jwtAuth, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("secret", "issuer", time.Hour)

	rec, _ := authCall(t, jwtAuth, "Token abc")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization header format")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTAuthenticator("secret", "issuer", -time.Minute)
	tokenStr, err := expired.Sign(expired.NewRegisteredClaims("user-1"))
	require.NoError(t, err)

	jwtAuth := auth.NewJWTAuthenticator("secret", "issuer", time.Hour)
	rec, _ := authCall(t, jwtAuth, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	other := auth.NewJWTAuthenticator("other-secret", "issuer", time.Hour)
	tokenStr, err := other.Sign(other.NewRegisteredClaims("user-1"))
	require.NoError(t, err)

	jwtAuth := auth.NewJWTAuthenticator("secret", "issuer", time.Hour)
	rec, _ := authCall(t, jwtAuth, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
