// Package handler exposes the auth service over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/usecase"
	authtypes "github.com/biolocklabs/biolock-api/services/auth-service/pkg/types"
	"github.com/biolocklabs/biolock-api/shared/auth"
	"github.com/biolocklabs/biolock-api/shared/middleware"
	"github.com/biolocklabs/biolock-api/shared/validator"
)

type authHTTPHandler struct {
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	accessTokenAuth      *auth.JWTAuthenticator
	resetTokenAuth       *auth.JWTAuthenticator
	validate             *validator.Validator
	logger               *zerolog.Logger
}

// NewAuthHTTPHandler creates the auth HTTP handler.
func NewAuthHTTPHandler(
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	accessTokenAuth *auth.JWTAuthenticator,
	resetTokenAuth *auth.JWTAuthenticator,
	validate *validator.Validator,
	logger *zerolog.Logger,
) *authHTTPHandler {
	return &authHTTPHandler{
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		accessTokenAuth:      accessTokenAuth,
		resetTokenAuth:       resetTokenAuth,
		validate:             validate,
		logger:               logger,
	}
}

// Routes assembles the router with all auth endpoints.
func (h *authHTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/register/biometric", h.RegisterWithBiometricKey)
		r.Post("/login", h.Login)
		r.Post("/login/biometric", h.BiometricLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.accessTokenAuth, func() jwt.Claims {
				return &authtypes.AccessTokenClaims{}
			}))
			r.Get("/me", h.Me)
		})

		r.Post("/password-reset/request", h.RequestPasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.resetTokenAuth, func() jwt.Claims {
				return &authtypes.PasswordResetClaims{}
			}))
			r.Get("/password-reset/validate", h.ValidatePasswordResetToken)
			r.Post("/password-reset", h.ResetPassword)
		})
	})

	return r
}
