package sqlite

import (
	"context"
	"fmt"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// compile-time check that *DB implements repository.SocialRepository
var _ repository.SocialRepository = (*DB)(nil)

func (db *DB) IsFollowing(ctx context.Context, personID, institutionID int64) (bool, error) {
	return db.edgeExists(ctx,
		`SELECT COUNT(*) FROM following WHERE person_id = ? AND institution_id = ?`,
		personID, institutionID)
}

// Follow is idempotent: re-following an already followed institution
// leaves the single edge in place.
func (db *DB) Follow(ctx context.Context, personID, institutionID int64) error {
	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO following (person_id, institution_id) VALUES (?, ?)`,
		personID, institutionID,
	); err != nil {
		return fmt.Errorf("sqlite: following institution %d: %w", institutionID, err)
	}
	return nil
}

func (db *DB) Unfollow(ctx context.Context, personID, institutionID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM following WHERE person_id = ? AND institution_id = ?`,
		personID, institutionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unfollowing institution %d: %w", institutionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("nem követett intézményt nem lehet kikövetni")
	}
	return nil
}

func (db *DB) FollowerCount(ctx context.Context, institutionID int64) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM following WHERE institution_id = ?`, institutionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting followers of institution %d: %w", institutionID, err)
	}
	return count, nil
}

func (db *DB) FollowedInstitutionIDs(ctx context.Context, personID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT institution_id FROM following WHERE person_id = ?`, personID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing followed ids for person %d: %w", personID, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning followed id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) FollowedInstitutions(ctx context.Context, personID int64) ([]model.InstitutionRef, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.institution_id, i.avatar_image, u.name
		 FROM following f
		 JOIN institutions i USING (institution_id)
		 JOIN users u USING (user_id)
		 WHERE f.person_id = ?
		 ORDER BY i.institution_id`, personID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing followed institutions for person %d: %w", personID, err)
	}
	defer rows.Close()

	refs := []model.InstitutionRef{}
	for rows.Next() {
		var ref model.InstitutionRef
		if err := rows.Scan(&ref.InstitutionID, &ref.AvatarImage, &ref.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning followed institution: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (db *DB) HasLiked(ctx context.Context, personID, newsID int64) (bool, error) {
	return db.edgeExists(ctx,
		`SELECT COUNT(*) FROM likes WHERE person_id = ? AND news_id = ?`,
		personID, newsID)
}

// Like is idempotent like Follow.
func (db *DB) Like(ctx context.Context, personID, newsID int64) error {
	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO likes (person_id, news_id) VALUES (?, ?)`,
		personID, newsID,
	); err != nil {
		return fmt.Errorf("sqlite: liking news %d: %w", newsID, err)
	}
	return nil
}

func (db *DB) Unlike(ctx context.Context, personID, newsID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE person_id = ? AND news_id = ?`,
		personID, newsID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unliking news %d: %w", newsID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("nem kedvelt bejegyzés")
	}
	return nil
}

func (db *DB) LikeCount(ctx context.Context, newsID int64) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE news_id = ?`, newsID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes of news %d: %w", newsID, err)
	}
	return count, nil
}

func (db *DB) edgeExists(ctx context.Context, query string, a, b int64) (bool, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, query, a, b).Scan(&count); err != nil {
		return false, fmt.Errorf("sqlite: checking edge: %w", err)
	}
	return count > 0, nil
}
