package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vellt/eduinfo-api/internal/apperror"
)

// maxIssueAttempts bounds the uniqueness retry loop in Issue.
const maxIssueAttempts = 20

// TokenWriter is the slice of the token store the issuer needs.
type TokenWriter interface {
	Exists(ctx context.Context, token string) (bool, error)
	Insert(ctx context.Context, userID int64, token string) error
}

// Issuer mints opaque session tokens and records them in the token
// store. Token values are random UUIDs; the store is the single source
// of truth for validity, so logout is a real revocation.
type Issuer struct {
	tokens TokenWriter

	// newValue is swapped out in tests to force collisions.
	newValue func() string
}

func NewIssuer(tokens TokenWriter) *Issuer {
	return &Issuer{tokens: tokens, newValue: uuid.NewString}
}

// Issue generates a token value unused by any session, valid or
// revoked, and persists it for the user. The retry loop is bounded;
// running out of attempts reports apperror.ErrTokenExhausted.
func (i *Issuer) Issue(ctx context.Context, userID int64) (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		token := i.newValue()

		exists, err := i.tokens.Exists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("auth: checking token uniqueness: %w", err)
		}
		if exists {
			continue
		}

		if err := i.tokens.Insert(ctx, userID, token); err != nil {
			return "", fmt.Errorf("auth: storing token: %w", err)
		}
		return token, nil
	}
	return "", apperror.TokenExhausted()
}
