package services

import (
	"errors"
	"fmt"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// bcryptHasher implements PasswordHasherSvc with bcrypt. The cost is the work factor
// and comes from configuration.
type bcryptHasher struct {
	cost int
}

// NewPasswordHasher creates a bcrypt hasher. Out-of-range costs are clamped.
func NewPasswordHasher(cost int) portssvc.PasswordHasherSvc {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &bcryptHasher{cost: cost}
}

var _ portssvc.PasswordHasherSvc = (*bcryptHasher)(nil)

// Hash hashes a plaintext password. A fresh salt is drawn on every call.
func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperrors.Invalid("password", "Password is required")
	}
	if len(plaintext) > maxPasswordBytes {
		return "", apperrors.Invalid("password", "Password must be at most 72 bytes long")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares a plaintext password with a bcrypt hash in constant time.
func (h *bcryptHasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", apperrors.ErrCorruptCredential, err)
	}
}
