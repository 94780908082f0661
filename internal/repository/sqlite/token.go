package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// compile-time check that *DB implements repository.TokenRepository
var _ repository.TokenRepository = (*DB)(nil)

// Exists checks the value against all tokens, valid or not. Invalidated
// tokens keep occupying their value forever, so the issuer must not
// reuse them.
func (db *DB) Exists(ctx context.Context, token string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tokens WHERE token = ?`, token,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking token existence: %w", err)
	}
	return count > 0, nil
}

func (db *DB) Insert(ctx context.Context, userID int64, token string) error {
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO tokens (user_id, token, is_valid) VALUES (?, ?, 1)`,
		userID, token,
	); err != nil {
		return fmt.Errorf("sqlite: inserting token for user %d: %w", userID, err)
	}
	return nil
}

// LookupValid resolves a token filtered to is_valid = 1. An invalidated
// or unknown token is indistinguishable to the caller: both are
// ErrInvalidCredential.
func (db *DB) LookupValid(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM tokens WHERE token = ? AND is_valid = 1`, token,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.InvalidCredential("Érvénytelen token")
		}
		return 0, fmt.Errorf("sqlite: looking up token: %w", err)
	}
	return userID, nil
}

// Invalidate flips is_valid to 0. The row is kept: tokens are never
// physically deleted while their user exists.
func (db *DB) Invalidate(ctx context.Context, token string) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE tokens SET is_valid = 0 WHERE token = ?`, token,
	); err != nil {
		return fmt.Errorf("sqlite: invalidating token: %w", err)
	}
	return nil
}

// ResolveRole joins tokens→users→roles. The caller has already
// validated the token, so a missing row here is a server-side fault,
// not a credential problem.
func (db *DB) ResolveRole(ctx context.Context, token string) (*model.Role, error) {
	var r model.Role
	err := db.conn.QueryRowContext(ctx,
		`SELECT roles.role, roles.role_id
		 FROM tokens
		 JOIN users USING (user_id)
		 JOIN roles USING (role_id)
		 WHERE token = ?`, token,
	).Scan(&r.Name, &r.ID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: resolving role for token: %w", err)
	}
	return &r, nil
}
