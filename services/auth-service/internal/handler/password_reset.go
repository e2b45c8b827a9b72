package handler

import (
	"errors"
	"net/http"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/payload"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/usecase"
	authtypes "github.com/biolocklabs/biolock-api/services/auth-service/pkg/types"
	"github.com/biolocklabs/biolock-api/shared/middleware"
)

func (h *authHTTPHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.RequestPasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if violations := h.validate.Validate(req); violations != nil {
		respondViolations(w, violations)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	// Always accepted, whether or not the email exists.
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *authHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	jti, ok := resetTokenJTI(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid password reset token claims")
		return
	}

	var req payload.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if violations := h.validate.Validate(req); violations != nil {
		respondViolations(w, violations)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), jti, req.NewPassword); err != nil {
		h.logger.Error().Err(err).Msg("failed to reset password")
		h.respondPasswordResetError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *authHTTPHandler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	jti, ok := resetTokenJTI(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid password reset token claims")
		return
	}

	if err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), jti); err != nil {
		h.logger.Error().Err(err).Msg("failed to validate password reset token")
		h.respondPasswordResetError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}

func resetTokenJTI(r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return "", false
	}

	resetClaims, ok := claims.(*authtypes.PasswordResetClaims)
	if !ok || resetClaims.ID == "" {
		return "", false
	}

	return resetClaims.ID, true
}

func (h *authHTTPHandler) respondPasswordResetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrTokenNotFound):
		respondError(w, http.StatusNotFound, "password reset token not found")
	case errors.Is(err, usecase.ErrTokenAlreadyUsed):
		respondError(w, http.StatusConflict, "password reset token has already been used")
	case errors.Is(err, usecase.ErrTokenExpired):
		respondError(w, http.StatusUnauthorized, "password reset token has expired")
	case errors.Is(err, usecase.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
