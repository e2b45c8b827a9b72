package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user in the authentication system. Email and, when set,
// BiometricKey are unique across all users; uniqueness is enforced by the
// store's indexes, not by callers. PasswordHash only ever holds an encoded
// argon2 hash, never a plaintext secret.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	BiometricKey *string       `bson:"biometric_key,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}
