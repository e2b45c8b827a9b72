package handler

import (
	"errors"
	"net/http"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/payload"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/usecase"
	authtypes "github.com/biolocklabs/biolock-api/services/auth-service/pkg/types"
	"github.com/biolocklabs/biolock-api/shared/middleware"
)

func (h *authHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if violations := h.validate.Validate(req); violations != nil {
		respondViolations(w, violations)
		return
	}

	user, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to register user")
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, payload.NewUserResponse(user))
}

func (h *authHTTPHandler) RegisterWithBiometricKey(w http.ResponseWriter, r *http.Request) {
	var req payload.BiometricRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if violations := h.validate.Validate(req); violations != nil {
		respondViolations(w, violations)
		return
	}

	user, err := h.authUsecase.RegisterWithBiometricKey(r.Context(), usecase.RegisterWithBiometricKeyParams{
		Email:        req.Email,
		Password:     req.Password,
		BiometricKey: req.BiometricKey,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to register user with biometric key")
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, payload.NewUserResponse(user))
}

func (h *authHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if violations := h.validate.Validate(req); violations != nil {
		respondViolations(w, violations)
		return
	}

	token, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to log in user")
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

func (h *authHTTPHandler) BiometricLogin(w http.ResponseWriter, r *http.Request) {
	var req payload.BiometricLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if violations := h.validate.Validate(req); violations != nil {
		respondViolations(w, violations)
		return
	}

	token, err := h.authUsecase.BiometricLogin(r.Context(), req.BiometricKey)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to log in user with biometric key")
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

func (h *authHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing token claims")
		return
	}

	accessClaims, ok := claims.(*authtypes.AccessTokenClaims)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid token claims")
		return
	}

	user, err := h.authUsecase.GetUser(r.Context(), accessClaims.Subject)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load current user")
		h.respondAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.NewUserResponse(user))
}

// respondAuthError maps usecase errors onto HTTP statuses. Unknown errors
// surface as an opaque 500.
func (h *authHTTPHandler) respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, usecase.ErrInvalidBiometricKey):
		respondError(w, http.StatusUnauthorized, "invalid biometric key")
	case errors.Is(err, usecase.ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, usecase.ErrDuplicateBiometricKey):
		respondError(w, http.StatusConflict, "biometric key already registered")
	case errors.Is(err, usecase.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
