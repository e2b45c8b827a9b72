// Package usecase contains the authentication business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/config"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/model"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/repository"
	authtypes "github.com/biolocklabs/biolock-api/services/auth-service/pkg/types"
	"github.com/biolocklabs/biolock-api/shared/auth"
	"github.com/biolocklabs/biolock-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	// Register creates a new user from email and password and returns it.
	Register(ctx context.Context, params RegisterParams) (*model.User, error)

	// RegisterWithBiometricKey creates a new user that can additionally log
	// in with a biometric key. The password is hashed and stored like in
	// Register.
	RegisterWithBiometricKey(ctx context.Context, params RegisterWithBiometricKeyParams) (*model.User, error)

	// Login verifies an email/password pair and issues an access token.
	Login(ctx context.Context, params LoginParams) (*authtypes.Token, error)

	// BiometricLogin issues an access token for the user owning the given
	// biometric key. The key itself is the credential; its authenticity is
	// established upstream at the device.
	BiometricLogin(ctx context.Context, biometricKey string) (*authtypes.Token, error)

	// GetUser returns the user with the given ID.
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string
}

// RegisterWithBiometricKeyParams defines the parameters for biometric
// enrollment.
type RegisterWithBiometricKeyParams struct {
	Email        string
	Password     string
	BiometricKey string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so a caller cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidBiometricKey is returned when no user owns the presented
	// biometric key.
	ErrInvalidBiometricKey = errors.New("invalid biometric key")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateBiometricKey is returned when the biometric key is already
	// enrolled for another user.
	ErrDuplicateBiometricKey = errors.New("biometric key already registered")

	// ErrUserNotFound is returned when a user looked up by ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps transient store failures. It is never
	// collapsed into a credential error.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

type authUsecase struct {
	userRepo       repository.UserRepository
	hasher         security.PasswordHasher
	jwtAuth        *auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	jwtAuth *auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
) AuthUsecase {
	return &authUsecase{
		userRepo:       userRepo,
		hasher:         hasher,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*authtypes.Token, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if ok, err := u.hasher.Verify(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	return u.issueAccessToken(user)
}

func (u *authUsecase) BiometricLogin(ctx context.Context, biometricKey string) (*authtypes.Token, error) {
	user, err := u.userRepo.GetUserByBiometricKey(ctx, biometricKey)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidBiometricKey
		}

		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return u.issueAccessToken(user)
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	email := NormalizeEmail(params.Email)

	if err := u.checkEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	return u.createUser(ctx, &model.User{
		Email:        email,
		PasswordHash: passwordHash,
	})
}

func (u *authUsecase) RegisterWithBiometricKey(
	ctx context.Context,
	params RegisterWithBiometricKeyParams,
) (*model.User, error) {
	email := NormalizeEmail(params.Email)

	if err := u.checkEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	if _, err := u.userRepo.GetUserByBiometricKey(ctx, params.BiometricKey); err == nil {
		return nil, ErrDuplicateBiometricKey
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	biometricKey := params.BiometricKey

	return u.createUser(ctx, &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		BiometricKey: &biometricKey,
	})
}

func (u *authUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return user, nil
}

// checkEmailAvailable is an advisory pre-check; the unique index remains the
// authority under concurrent registration.
func (u *authUsecase) checkEmailAvailable(ctx context.Context, email string) error {
	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

func (u *authUsecase) createUser(ctx context.Context, user *model.User) (*model.User, error) {
	created, err := u.userRepo.CreateUser(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Two concurrent registrations can both pass the pre-check; the
			// index rejects the loser and names itself in the error.
			if strings.Contains(err.Error(), repository.UniqueBiometricKeyIndex) {
				return nil, ErrDuplicateBiometricKey
			}
			return nil, ErrDuplicateEmail
		}

		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return created, nil
}

func (u *authUsecase) issueAccessToken(user *model.User) (*authtypes.Token, error) {
	claims := authtypes.AccessTokenClaims{
		Email:            user.Email,
		RegisteredClaims: u.jwtAuth.NewRegisteredClaims(user.ID.Hex()),
	}

	accessToken, err := u.jwtAuth.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &authtypes.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtAuth.TTL().Seconds()),
	}, nil
}

// NormalizeEmail lowercases and trims an email address. Uniqueness and login
// lookups are case-insensitive: every store operation goes through the
// normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
