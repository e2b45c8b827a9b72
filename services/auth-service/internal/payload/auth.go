// Package payload defines the request and response bodies of the auth HTTP
// API. Request structs carry validate tags checked before the business logic
// runs; responses never expose password hashes.
package payload

import (
	"time"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/model"
)

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type BiometricRegisterRequest struct {
	Email        string `json:"email"         validate:"required,email"`
	Password     string `json:"password"      validate:"required,min=8"`
	BiometricKey string `json:"biometric_key" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type BiometricLoginRequest struct {
	BiometricKey string `json:"biometric_key" validate:"required"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	BiometricKey *string   `json:"biometric_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUserResponse maps a stored user onto its external representation.
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:           user.ID.Hex(),
		Email:        user.Email,
		BiometricKey: user.BiometricKey,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
