// Package security provides one-way hashing for user secrets.
package security

import "github.com/matthewhartstonge/argon2"

// PasswordHasher hashes and verifies user secrets. Implementations must use a
// salted one-way algorithm with a constant-time verify.
type PasswordHasher interface {
	// Hash generates a salted, encoded hash of the given password.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the encoded hash.
	Verify(password, encodedHash string) (bool, error)
}

type argon2Hasher struct {
	config argon2.Config
}

// NewArgon2Hasher creates a PasswordHasher backed by Argon2id. timeCost tunes
// the number of passes over memory; zero keeps the library default.
func NewArgon2Hasher(timeCost uint32) PasswordHasher {
	config := argon2.DefaultConfig()
	if timeCost > 0 {
		config.TimeCost = timeCost
	}

	return &argon2Hasher{config: config}
}

func (h *argon2Hasher) Hash(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

func (h *argon2Hasher) Verify(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
