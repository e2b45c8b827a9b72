package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewArgon2Hasher(1)

	hash, err := hasher.Hash("Password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2"))
	assert.NotContains(t, hash, "Password123")

	ok, err := hasher.Verify("Password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_WrongPassword(t *testing.T) {
	hasher := NewArgon2Hasher(1)

	hash, err := hasher.Hash("Password123")
	require.NoError(t, err)

	ok, err := hasher.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltedPerCall(t *testing.T) {
	hasher := NewArgon2Hasher(1)

	first, err := hasher.Hash("Password123")
	require.NoError(t, err)
	second, err := hasher.Hash("Password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify_MalformedHash(t *testing.T) {
	hasher := NewArgon2Hasher(1)

	_, err := hasher.Verify("Password123", "not-an-encoded-hash")
	assert.Error(t, err)
}
