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

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

// Static query tables keyed by the ProfileKind tagged variant. Table
// names are never interpolated into SQL text.
var (
	profileFlagsQuery = map[repository.ProfileKind]string{
		repository.ProfilePerson:      `SELECT is_enabled, is_accepted FROM person WHERE user_id = ?`,
		repository.ProfileInstitution: `SELECT is_enabled, is_accepted FROM institutions WHERE user_id = ?`,
	}
	avatarQuery = map[repository.ProfileKind]string{
		repository.ProfilePerson:      `SELECT avatar_image FROM person WHERE user_id = ?`,
		repository.ProfileInstitution: `SELECT avatar_image FROM institutions WHERE user_id = ?`,
	}
	setAvatarQuery = map[repository.ProfileKind]string{
		repository.ProfilePerson:      `UPDATE person SET avatar_image = ? WHERE user_id = ?`,
		repository.ProfileInstitution: `UPDATE institutions SET avatar_image = ? WHERE user_id = ?`,
	}
)

// Flags loads the two gate booleans for the user's profile row.
func (db *DB) Flags(ctx context.Context, kind repository.ProfileKind, userID int64) (repository.ProfileFlags, error) {
	var f repository.ProfileFlags
	err := db.conn.QueryRowContext(ctx, profileFlagsQuery[kind], userID).
		Scan(&f.Enabled, &f.Accepted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return f, apperror.AccountNotFound()
		}
		return f, fmt.Errorf("sqlite: loading profile flags for user %d: %w", userID, err)
	}
	return f, nil
}

func (db *DB) PersonIDByUser(ctx context.Context, userID int64) (int64, error) {
	return db.profileID(ctx,
		`SELECT person_id FROM person WHERE user_id = ?`, userID)
}

func (db *DB) InstitutionIDByUser(ctx context.Context, userID int64) (int64, error) {
	return db.profileID(ctx,
		`SELECT institution_id FROM institutions WHERE user_id = ?`, userID)
}

func (db *DB) profileID(ctx context.Context, query string, userID int64) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.AccountNotFound()
		}
		return 0, fmt.Errorf("sqlite: resolving profile id for user %d: %w", userID, err)
	}
	return id, nil
}

func (db *DB) InstitutionProfile(ctx context.Context, institutionID int64) (*model.InstitutionProfile, error) {
	var p model.InstitutionProfile
	err := db.conn.QueryRowContext(ctx,
		`SELECT institution_id, user_id, avatar_image, banner_image, description,
		        is_enabled, is_accepted, name, email
		 FROM institutions
		 JOIN users USING (user_id)
		 WHERE institution_id = ?`, institutionID,
	).Scan(
		&p.InstitutionID, &p.UserID, &p.AvatarImage, &p.BannerImage, &p.Description,
		&p.Enabled, &p.Accepted, &p.Name, &p.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Érvénytelen intézményi azonosító")
		}
		return nil, fmt.Errorf("sqlite: loading institution %d: %w", institutionID, err)
	}
	return &p, nil
}

func (db *DB) PersonProfile(ctx context.Context, userID int64) (*model.PersonProfile, error) {
	var p model.PersonProfile
	err := db.conn.QueryRowContext(ctx,
		`SELECT person_id, user_id, avatar_image, is_enabled, is_accepted, name, email
		 FROM person
		 JOIN users USING (user_id)
		 WHERE user_id = ?`, userID,
	).Scan(
		&p.PersonID, &p.UserID, &p.AvatarImage, &p.Enabled, &p.Accepted, &p.Name, &p.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.AccountNotFound()
		}
		return nil, fmt.Errorf("sqlite: loading person profile for user %d: %w", userID, err)
	}
	return &p, nil
}

func (db *DB) InstitutionRef(ctx context.Context, institutionID int64) (*model.InstitutionRef, error) {
	var ref model.InstitutionRef
	err := db.conn.QueryRowContext(ctx,
		`SELECT institution_id, avatar_image, name
		 FROM institutions
		 JOIN users USING (user_id)
		 WHERE institution_id = ?`, institutionID,
	).Scan(&ref.InstitutionID, &ref.AvatarImage, &ref.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Érvénytelen intézményi azonosító")
		}
		return nil, fmt.Errorf("sqlite: loading institution ref %d: %w", institutionID, err)
	}
	return &ref, nil
}

func (db *DB) PersonRef(ctx context.Context, personID int64) (*model.PersonRef, error) {
	var ref model.PersonRef
	err := db.conn.QueryRowContext(ctx,
		`SELECT person_id, avatar_image, name
		 FROM person
		 JOIN users USING (user_id)
		 WHERE person_id = ?`, personID,
	).Scan(&ref.PersonID, &ref.AvatarImage, &ref.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.AccountNotFound()
		}
		return nil, fmt.Errorf("sqlite: loading person ref %d: %w", personID, err)
	}
	return &ref, nil
}

func (db *DB) Avatar(ctx context.Context, kind repository.ProfileKind, userID int64) (string, error) {
	var avatar string
	err := db.conn.QueryRowContext(ctx, avatarQuery[kind], userID).Scan(&avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.AccountNotFound()
		}
		return "", fmt.Errorf("sqlite: loading avatar for user %d: %w", userID, err)
	}
	return avatar, nil
}

func (db *DB) SetAvatar(ctx context.Context, kind repository.ProfileKind, userID int64, filename string) error {
	if _, err := db.conn.ExecContext(ctx, setAvatarQuery[kind], filename, userID); err != nil {
		return fmt.Errorf("sqlite: updating avatar for user %d: %w", userID, err)
	}
	return nil
}

func (db *DB) InstitutionBanner(ctx context.Context, userID int64) (string, error) {
	var banner string
	err := db.conn.QueryRowContext(ctx,
		`SELECT banner_image FROM institutions WHERE user_id = ?`, userID,
	).Scan(&banner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.AccountNotFound()
		}
		return "", fmt.Errorf("sqlite: loading banner for user %d: %w", userID, err)
	}
	return banner, nil
}

func (db *DB) SetInstitutionBanner(ctx context.Context, userID int64, filename string) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE institutions SET banner_image = ? WHERE user_id = ?`, filename, userID,
	); err != nil {
		return fmt.Errorf("sqlite: updating banner for user %d: %w", userID, err)
	}
	return nil
}

// ListInstitutionAccounts returns the admin overview rows, newest first.
func (db *DB) ListInstitutionAccounts(ctx context.Context) ([]model.Account, error) {
	return db.listAccounts(ctx,
		`SELECT institution_id, is_enabled, is_accepted, avatar_image, name, email
		 FROM institutions
		 JOIN users USING (user_id)
		 ORDER BY institution_id DESC`)
}

func (db *DB) ListPersonAccounts(ctx context.Context) ([]model.Account, error) {
	return db.listAccounts(ctx,
		`SELECT person_id, is_enabled, is_accepted, avatar_image, name, email
		 FROM person
		 JOIN users USING (user_id)
		 ORDER BY person_id DESC`)
}

func (db *DB) listAccounts(ctx context.Context, query string) ([]model.Account, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ProfileID, &a.Enabled, &a.Accepted, &a.AvatarImage, &a.Name, &a.Email); err != nil {
			return nil, fmt.Errorf("sqlite: scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (db *DB) SetInstitutionEnabled(ctx context.Context, institutionID int64, enabled bool) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE institutions SET is_enabled = ? WHERE institution_id = ?`, enabled, institutionID,
	); err != nil {
		return fmt.Errorf("sqlite: setting institution %d enabled=%t: %w", institutionID, enabled, err)
	}
	return nil
}

func (db *DB) SetInstitutionAccepted(ctx context.Context, institutionID int64) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE institutions SET is_accepted = 1 WHERE institution_id = ?`, institutionID,
	); err != nil {
		return fmt.Errorf("sqlite: accepting institution %d: %w", institutionID, err)
	}
	return nil
}

func (db *DB) SetPersonEnabled(ctx context.Context, personID int64, enabled bool) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE person SET is_enabled = ? WHERE person_id = ?`, enabled, personID,
	); err != nil {
		return fmt.Errorf("sqlite: setting person %d enabled=%t: %w", personID, enabled, err)
	}
	return nil
}
