package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature, expiry, or claim
// shape validation.
var ErrInvalidToken = errors.New("invalid token")

// JWTAuthenticator signs and verifies HS256 tokens for a single token class.
// The signing secret, issuer, and lifetime are fixed at construction; separate
// instances are used for access tokens and password reset tokens.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance. The issuer is
// also used as the expected audience.
func NewJWTAuthenticator(secret, issuer string, ttl time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the lifetime applied to issued tokens.
func (a *JWTAuthenticator) TTL() time.Duration {
	return a.ttl
}

// NewRegisteredClaims builds the registered claim set for a token issued now
// to the given subject.
func (a *JWTAuthenticator) NewRegisteredClaims(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    a.issuer,
		Audience:  jwt.ClaimStrings{a.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
}

// Sign signs the given claims with the configured secret. This is generic and
// accepts any type that implements jwt.Claims.
func (a *JWTAuthenticator) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// Verify validates a token string and parses it into the provided claims
// value, which should be a pointer to a struct that implements jwt.Claims.
// Any failure is reported as ErrInvalidToken.
func (a *JWTAuthenticator) Verify(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.issuer),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
