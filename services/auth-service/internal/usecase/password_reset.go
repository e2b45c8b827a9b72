package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/config"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/model"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/repository"
	authtypes "github.com/biolocklabs/biolock-api/services/auth-service/pkg/types"
	"github.com/biolocklabs/biolock-api/shared/auth"
	"github.com/biolocklabs/biolock-api/shared/security"
)

// PasswordResetUsecase defines the business logic for password reset token
// operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset initiates the password reset process for a given email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword resets the user's password using the provided jti and new password.
	ResetPassword(ctx context.Context, jti, newPassword string) error

	// ValidatePasswordResetToken checks if the provided jti is not used.
	ValidatePasswordResetToken(ctx context.Context, jti string) error
}

var (
	ErrTokenNotFound    = errors.New("password reset token not found")
	ErrTokenAlreadyUsed = errors.New("password reset token has already been used")
	ErrTokenExpired     = errors.New("password reset token has expired")
)

// PasswordResetMailer delivers password reset emails. *mailer.Mailer
// satisfies it.
type PasswordResetMailer interface {
	SendHTML(to []string, subject, htmlBody string) error
}

type passwordResetUsecase struct {
	userRepo       repository.UserRepository
	tokenRepo      repository.PasswordResetTokenRepository
	jwtAuth        *auth.JWTAuthenticator
	hasher         security.PasswordHasher
	mailer         PasswordResetMailer
	authServiceCfg *config.AuthServiceConfig
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
// jwtAuth must be the authenticator configured with the password reset
// secret, not the access token one.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	jwtAuth *auth.JWTAuthenticator,
	hasher security.PasswordHasher,
	mailer PasswordResetMailer,
	authServiceCfg *config.AuthServiceConfig,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		jwtAuth:        jwtAuth,
		hasher:         hasher,
		mailer:         mailer,
		authServiceCfg: authServiceCfg,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Invalidate any existing unused tokens for this user
	if err := u.tokenRepo.InvalidateUserTokens(ctx, user.ID.Hex()); err != nil {
		return err
	}

	tokenStr, jti, err := u.generatePasswordResetToken(user)
	if err != nil {
		return err
	}

	resetToken := &model.PasswordResetToken{
		JTI:       jti,
		UserID:    user.ID,
		Email:     user.Email,
		Used:      false,
		ExpiresAt: time.Now().Add(u.jwtAuth.TTL()),
	}

	if _, err := u.tokenRepo.CreateToken(ctx, resetToken); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", u.authServiceCfg.AppPasswordResetURL, tokenStr)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, resetLink, resetLink, u.jwtAuth.TTL())

	if err := u.mailer.SendHTML([]string{user.Email}, "Password Reset Request", htmlBody); err != nil {
		return err
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, jti, newPassword string) error {
	resetToken, err := u.getUsableToken(ctx, jti)
	if err != nil {
		return err
	}

	passwordHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, resetToken.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	if err := u.tokenRepo.MarkTokenAsUsed(ctx, jti); err != nil {
		return err
	}

	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, jti string) error {
	_, err := u.getUsableToken(ctx, jti)
	return err
}

func (u *passwordResetUsecase) getUsableToken(ctx context.Context, jti string) (*model.PasswordResetToken, error) {
	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if resetToken.Used {
		return nil, ErrTokenAlreadyUsed
	}

	if time.Now().After(resetToken.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	return resetToken, nil
}

// generatePasswordResetToken creates a password reset JWT with a unique JTI.
func (u *passwordResetUsecase) generatePasswordResetToken(user *model.User) (string, string, error) {
	jti := uuid.NewString()

	registered := u.jwtAuth.NewRegisteredClaims(user.ID.Hex())
	registered.ID = jti

	claims := authtypes.PasswordResetClaims{
		Email:            user.Email,
		RegisteredClaims: registered,
	}

	tokenStr, err := u.jwtAuth.Sign(claims)
	if err != nil {
		return "", "", err
	}

	return tokenStr, jti, nil
}
