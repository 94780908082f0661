package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// compile-time check that *DB implements repository.NewsRepository
var _ repository.NewsRepository = (*DB)(nil)

func (db *DB) CreateNews(ctx context.Context, institutionID int64, description string, bannerImage *string) error {
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO news (institution_id, description, banner_image, timestamp)
		 VALUES (?, ?, ?, ?)`,
		institutionID, description, bannerImage, now(),
	); err != nil {
		return fmt.Errorf("sqlite: inserting news for institution %d: %w", institutionID, err)
	}
	return nil
}

func (db *DB) UpdateNews(ctx context.Context, newsID, institutionID int64, description string, bannerImage *string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE news SET description = ?, banner_image = ?
		 WHERE news_id = ? AND institution_id = ?`,
		description, bannerImage, newsID, institutionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating news %d: %w", newsID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("nem létező id-t szeretnél módosítani")
	}
	return nil
}

func (db *DB) DeleteNews(ctx context.Context, newsID, institutionID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM news WHERE news_id = ? AND institution_id = ?`,
		newsID, institutionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting news %d: %w", newsID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("nem létező id-t szeretnél törölni")
	}
	return nil
}

func (db *DB) NewsBannerImage(ctx context.Context, newsID, institutionID int64) (*string, error) {
	var banner *string
	err := db.conn.QueryRowContext(ctx,
		`SELECT banner_image FROM news WHERE news_id = ? AND institution_id = ?`,
		newsID, institutionID,
	).Scan(&banner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("nem létező bejegyzés")
		}
		return nil, fmt.Errorf("sqlite: loading news banner %d: %w", newsID, err)
	}
	return banner, nil
}

// ListNewsByInstitution returns the institution's posts newest-first
// with like counts. When viewerPersonID is given, LikedByViewer is
// filled from that person's likes.
func (db *DB) ListNewsByInstitution(ctx context.Context, institutionID int64, viewerPersonID *int64) ([]model.News, error) {
	query := `
		SELECT n.news_id, n.institution_id, n.description, n.banner_image, n.timestamp,
		       (SELECT COUNT(*) FROM likes l WHERE l.news_id = n.news_id) AS likes,
		       ` + likedExpr(viewerPersonID) + `
		FROM news n
		WHERE n.institution_id = ?
		ORDER BY n.news_id DESC`

	args := []any{}
	if viewerPersonID != nil {
		args = append(args, *viewerPersonID)
	}
	args = append(args, institutionID)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing news for institution %d: %w", institutionID, err)
	}
	defer rows.Close()

	items := []model.News{}
	for rows.Next() {
		var n model.News
		if err := rows.Scan(&n.NewsID, &n.InstitutionID, &n.Description, &n.BannerImage,
			&n.Timestamp, &n.Likes, &n.LikedByViewer); err != nil {
			return nil, fmt.Errorf("sqlite: scanning news row: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// ListNewsForFeed returns the posts of the followed institutions with
// the publisher identity attached, newest-first. The viewer's liked
// flag is always filled here.
func (db *DB) ListNewsForFeed(ctx context.Context, personID int64, institutionIDs []int64) ([]model.FeedNews, error) {
	if len(institutionIDs) == 0 {
		return []model.FeedNews{}, nil
	}

	query := `
		SELECT n.news_id, n.institution_id, n.description, n.banner_image, n.timestamp,
		       (SELECT COUNT(*) FROM likes l WHERE l.news_id = n.news_id) AS likes,
		       (SELECT COUNT(*) FROM likes l WHERE l.news_id = n.news_id AND l.person_id = ?) AS liked,
		       i.institution_id, i.avatar_image, u.name
		FROM news n
		JOIN institutions i USING (institution_id)
		JOIN users u USING (user_id)
		WHERE n.institution_id IN (` + placeholders(len(institutionIDs)) + `)
		ORDER BY n.news_id DESC`

	args := make([]any, 0, len(institutionIDs)+1)
	args = append(args, personID)
	for _, id := range institutionIDs {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing feed news for person %d: %w", personID, err)
	}
	defer rows.Close()

	items := []model.FeedNews{}
	for rows.Next() {
		var fn model.FeedNews
		if err := rows.Scan(&fn.NewsID, &fn.InstitutionID, &fn.Description, &fn.BannerImage,
			&fn.Timestamp, &fn.Likes, &fn.LikedByViewer,
			&fn.Institution.InstitutionID, &fn.Institution.AvatarImage, &fn.Institution.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning feed news row: %w", err)
		}
		items = append(items, fn)
	}
	return items, rows.Err()
}

// likedExpr selects the liked flag when a viewer is present, a constant
// false otherwise, keeping the scan column count stable.
func likedExpr(viewerPersonID *int64) string {
	if viewerPersonID == nil {
		return `0 AS liked`
	}
	return `(SELECT COUNT(*) FROM likes l WHERE l.news_id = n.news_id AND l.person_id = ?) AS liked`
}

// placeholders builds "?, ?, ?" for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
