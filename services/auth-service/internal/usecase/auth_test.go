package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/config"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/model"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/repository"
	authtypes "github.com/biolocklabs/biolock-api/services/auth-service/pkg/types"
	"github.com/biolocklabs/biolock-api/shared/auth"
	"github.com/biolocklabs/biolock-api/shared/security"
)

// --- fakes ---

func duplicateKeyErr(index string) error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: biolock.users index: %s dup key", index),
	}}}
}

// fakeUserRepo is an in-memory UserRepository enforcing the same uniqueness
// rules as the Mongo indexes, including their duplicate-key error shape.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User

	// failWith makes every call fail, simulating an unavailable store.
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, duplicateKeyErr(repository.UniqueEmailIndex)
		}
		if existing.BiometricKey != nil && user.BiometricKey != nil &&
			*existing.BiometricKey == *user.BiometricKey {
			return nil, duplicateKeyErr(repository.UniqueBiometricKeyIndex)
		}
	}

	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID.Hex()] = user

	return user, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByBiometricKey(_ context.Context, biometricKey string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, user := range f.users {
		if user.BiometricKey != nil && *user.BiometricKey == biometricKey {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.BiometricKey != nil {
		user.BiometricKey = params.BiometricKey
	}
	user.UpdatedAt = time.Now()

	return user, nil
}

// blindUserRepo never finds anything on lookup but still rejects duplicate
// inserts, modeling the window where two registrations pass the pre-check
// and only the unique index can arbitrate.
type blindUserRepo struct {
	*fakeUserRepo
}

func (b *blindUserRepo) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (b *blindUserRepo) GetUserByBiometricKey(context.Context, string) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func newTestJWTAuthenticator() *auth.JWTAuthenticator {
	return auth.NewJWTAuthenticator("test-secret", "biolock-test", time.Hour)
}

func newTestAuthUsecase(repo repository.UserRepository) AuthUsecase {
	return NewAuthUsecase(
		repo,
		security.NewArgon2Hasher(1),
		newTestJWTAuthenticator(),
		&config.AuthServiceConfig{},
	)
}

// --- registration ---

func TestRegister_Success(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	user, err := u.Register(context.Background(), RegisterParams{
		Email:    "a@x.com",
		Password: "Password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.False(t, user.ID.IsZero())
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "Password123")
}

func TestRegister_NormalizesEmail(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	user, err := u.Register(context.Background(), RegisterParams{
		Email:    "  User@Example.COM ",
		Password: "Password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	u := newTestAuthUsecase(repo)

	_, err := u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Password123"})
	require.NoError(t, err)

	_, err = u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Other456789"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, repo.users, 1)
}

func TestRegister_DuplicateEmailDiffersOnlyInCase(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	_, err := u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Password123"})
	require.NoError(t, err)

	_, err = u.Register(context.Background(), RegisterParams{Email: "A@X.COM", Password: "Password123"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_DuplicateRejectedByIndex(t *testing.T) {
	// The pre-check sees nothing; the duplicate-key error from the insert
	// must still come back as ErrDuplicateEmail.
	repo := &blindUserRepo{fakeUserRepo: newFakeUserRepo()}
	u := newTestAuthUsecase(repo)

	_, err := u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Password123"})
	require.NoError(t, err)

	_, err = u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Password123"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	repo := &blindUserRepo{fakeUserRepo: newFakeUserRepo()}
	u := newTestAuthUsecase(repo)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.Register(context.Background(), RegisterParams{
				Email:    "race@x.com",
				Password: "Password123",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicated int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateEmail):
			duplicated++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, duplicated)
	assert.Len(t, repo.users, 1)
}

func TestRegister_StoreUnavailable(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = errors.New("connection reset")
	u := newTestAuthUsecase(repo)

	_, err := u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Password123"})
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRegisterWithBiometricKey_Success(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	user, err := u.RegisterWithBiometricKey(context.Background(), RegisterWithBiometricKeyParams{
		Email:        "a@x.com",
		Password:     "Password123",
		BiometricKey: "bio-key-1",
	})
	require.NoError(t, err)
	require.NotNil(t, user.BiometricKey)
	assert.Equal(t, "bio-key-1", *user.BiometricKey)
	// The password is hashed even though the biometric key is the primary
	// credential.
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "Password123")
}

func TestRegisterWithBiometricKey_DuplicateKey(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	_, err := u.RegisterWithBiometricKey(context.Background(), RegisterWithBiometricKeyParams{
		Email:        "a@x.com",
		Password:     "Password123",
		BiometricKey: "bio-key-1",
	})
	require.NoError(t, err)

	_, err = u.RegisterWithBiometricKey(context.Background(), RegisterWithBiometricKeyParams{
		Email:        "b@x.com",
		Password:     "Password123",
		BiometricKey: "bio-key-1",
	})
	require.ErrorIs(t, err, ErrDuplicateBiometricKey)
}

func TestRegisterWithBiometricKey_DuplicateKeyRejectedByIndex(t *testing.T) {
	repo := &blindUserRepo{fakeUserRepo: newFakeUserRepo()}
	u := newTestAuthUsecase(repo)

	_, err := u.RegisterWithBiometricKey(context.Background(), RegisterWithBiometricKeyParams{
		Email:        "a@x.com",
		Password:     "Password123",
		BiometricKey: "bio-key-1",
	})
	require.NoError(t, err)

	_, err = u.RegisterWithBiometricKey(context.Background(), RegisterWithBiometricKeyParams{
		Email:        "b@x.com",
		Password:     "Password123",
		BiometricKey: "bio-key-1",
	})
	require.ErrorIs(t, err, ErrDuplicateBiometricKey)
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	user, err := u.Register(context.Background(), RegisterParams{
		Email:    "a@x.com",
		Password: "Password123",
	})
	require.NoError(t, err)

	token, err := u.Login(context.Background(), LoginParams{Email: "a@x.com", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	claims := &authtypes.AccessTokenClaims{}
	require.NoError(t, newTestJWTAuthenticator().Verify(token.AccessToken, claims))
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	_, err := u.Register(context.Background(), RegisterParams{Email: "User@X.com", Password: "Password123"})
	require.NoError(t, err)

	_, err = u.Login(context.Background(), LoginParams{Email: "user@x.com", Password: "Password123"})
	require.NoError(t, err)
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	_, err := u.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "Password123"})
	require.NoError(t, err)

	_, unknownErr := u.Login(context.Background(), LoginParams{Email: "nobody@x.com", Password: "Password123"})
	_, wrongErr := u.Login(context.Background(), LoginParams{Email: "a@x.com", Password: "wrong"})

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestLogin_StoreUnavailableIsNotACredentialFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = errors.New("connection reset")
	u := newTestAuthUsecase(repo)

	_, err := u.Login(context.Background(), LoginParams{Email: "a@x.com", Password: "Password123"})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

// --- biometric login ---

func TestBiometricLogin_Success(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	user, err := u.RegisterWithBiometricKey(context.Background(), RegisterWithBiometricKeyParams{
		Email:        "a@x.com",
		Password:     "Password123",
		BiometricKey: "bio-key-1",
	})
	require.NoError(t, err)

	token, err := u.BiometricLogin(context.Background(), "bio-key-1")
	require.NoError(t, err)

	claims := &authtypes.AccessTokenClaims{}
	require.NoError(t, newTestJWTAuthenticator().Verify(token.AccessToken, claims))
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestBiometricLogin_UnknownKey(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	_, err := u.BiometricLogin(context.Background(), "unknown-key")
	require.ErrorIs(t, err, ErrInvalidBiometricKey)
}

func TestBiometricLogin_StoreUnavailable(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = errors.New("connection reset")
	u := newTestAuthUsecase(repo)

	_, err := u.BiometricLogin(context.Background(), "bio-key-1")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidBiometricKey)
}

// --- lookup ---

func TestGetUser_NotFound(t *testing.T) {
	u := newTestAuthUsecase(newFakeUserRepo())

	_, err := u.GetUser(context.Background(), bson.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrUserNotFound)
}
