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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateWithProfile inserts the user row and, for person/institution
// accounts, the matching role-profile row inside a single transaction.
// Any failure after the user insert rolls the whole thing back — no
// orphan user rows.
//
// Profile defaults encode the acceptance workflow: persons start
// accepted, institutions wait for admin approval (is_accepted = 0).
func (db *DB) CreateWithProfile(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning registration tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, password, name, role_id) VALUES (?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.Name, user.RoleID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	user.ID = userID

	switch user.RoleID {
	case model.RoleIDPerson:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO person (user_id, avatar_image, is_enabled, is_accepted)
			 VALUES (?, 'default_avatar.jpg', 1, 1)`,
			userID,
		)
	case model.RoleIDInstitution:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO institutions (user_id, avatar_image, banner_image, description, is_enabled, is_accepted)
			 VALUES (?, 'default_avatar.jpg', 'default_banner.jpg', '', 1, 0)`,
			userID,
		)
	case model.RoleIDAdmin:
		// Admin accounts carry no role-profile row.
	default:
		return fmt.Errorf("sqlite: unknown role id %d", user.RoleID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: inserting role profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing registration: %w", err)
	}
	return nil
}

// GetByEmail returns apperror.ErrNotFound for unknown emails; login
// maps that to 404.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT user_id, email, password, name, role_id FROM users WHERE email = ?`, email)
}

func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT user_id, email, password, name, role_id FROM users WHERE user_id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.RoleID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("A felhasználó nem található")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}

func (db *DB) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking email %q: %w", email, err)
	}
	return count > 0, nil
}

func (db *DB) UpdateName(ctx context.Context, userID int64, name string) error {
	return db.updateUserColumn(ctx,
		`UPDATE users SET name = ? WHERE user_id = ?`, name, userID)
}

func (db *DB) UpdateEmail(ctx context.Context, userID int64, email string) error {
	return db.updateUserColumn(ctx,
		`UPDATE users SET email = ? WHERE user_id = ?`, email, userID)
}

func (db *DB) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return db.updateUserColumn(ctx,
		`UPDATE users SET password = ? WHERE user_id = ?`, passwordHash, userID)
}

func (db *DB) updateUserColumn(ctx context.Context, query, value string, userID int64) error {
	if _, err := db.conn.ExecContext(ctx, query, value, userID); err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", userID, err)
	}
	return nil
}

// Delete removes the user row; tokens, role profile, content, likes,
// follows and rooms all go with it via ON DELETE CASCADE.
func (db *DB) Delete(ctx context.Context, userID int64) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", userID, err)
	}
	return nil
}
