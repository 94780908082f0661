// Package auth provides password hashing, token issuing and the HTTP
// middleware gates protecting the role-scoped route groups.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vellt/eduinfo-api/internal/apperror"
)

// defaultCost is the bcrypt work factor used for stored passwords.
const defaultCost = 10

// PasswordService hashes and verifies passwords with bcrypt. It is a
// struct so tests can inject a lower cost and skip the per-hash delay.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a service with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest returns a service with the given cost.
// Tests pass bcrypt.MinCost; never use this in production wiring.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext. bcrypt silently truncates input beyond 72
// bytes, so longer passwords are rejected up front.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks the plaintext against a stored hash. A mismatch comes
// back as apperror.ErrInvalidCredential so login maps it to 401.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.InvalidCredential("Hibás jelszó")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
