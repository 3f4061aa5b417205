// ABOUTME: Password hashing and verification using bcrypt
// ABOUTME: Salt is embedded in the digest, so no separate salt storage is needed

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the default bcrypt work factor. Registration and
// login stay under ~100ms on commodity hardware at this cost.
const DefaultBcryptCost = 10

// dummyHash is a bcrypt digest of an unguessable value, used for timing
// equalization when the looked-up credential does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the given cost.
// Costs outside bcrypt's supported range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt digest of password. A fresh salt is generated
// per call, so hashing the same password twice yields different digests.
func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. It returns false for
// any mismatch, including a malformed or empty digest; it never panics.
func (h *PasswordHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// VerifyDummy performs a throwaway bcrypt comparison. Login handlers call
// this when no credential was found for the supplied identity, so that
// unknown-user and wrong-password attempts take comparable time.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
