// Package auth provides password hashing and verification.
package auth

import (
	"warbler/internal/models"
	"warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext passwords into stored hashes and checks attempts against them.
type Hasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash.
	Verify(password, hash string) bool
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	Cost      int
	MinLength int
}

// NewBcryptHasher returns a hasher with the given cost and minimum password length.
// Out-of-range values fall back to bcrypt.DefaultCost and 1.
func NewBcryptHasher(cost, minLength int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if minLength < 1 {
		minLength = 1
	}
	return &BcryptHasher{Cost: cost, MinLength: minLength}
}

// Hash validates the password policy, then hashes. Policy failures are validation errors.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := validation.ValidatePassword(password, h.MinLength); err != nil {
		return "", models.WrapValidationError(err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
