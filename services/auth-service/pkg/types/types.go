// Package types holds the token shapes shared between the auth service and
// its callers.
package types

import "github.com/golang-jwt/jwt/v5"

// Token is the access credential returned by the login and registration flows.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AccessTokenClaims are the claims carried by an access token. The registered
// subject claim holds the user ID.
type AccessTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// PasswordResetClaims are the claims carried by a password reset token. The
// registered ID claim (jti) ties the token to a single-use database record.
type PasswordResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
