package sqlite

import (
	"context"
	"fmt"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// compile-time checks
var (
	_ repository.ContactRepository  = (*DB)(nil)
	_ repository.CategoryRepository = (*DB)(nil)
)

// Static query tables keyed by the ContactKind tagged variant. Each
// contact kind lives in its own table with its own value column; the
// maps keep table and column names out of formatted SQL.
var (
	contactInsertQuery = map[repository.ContactKind]string{
		repository.ContactEmail:   `INSERT INTO emails (institution_id, title, email) VALUES (?, ?, ?)`,
		repository.ContactPhone:   `INSERT INTO phones (institution_id, title, phone) VALUES (?, ?, ?)`,
		repository.ContactWebsite: `INSERT INTO websites (institution_id, title, website) VALUES (?, ?, ?)`,
	}
	contactUpdateQuery = map[repository.ContactKind]string{
		repository.ContactEmail:   `UPDATE emails SET title = ?, email = ? WHERE email_id = ? AND institution_id = ?`,
		repository.ContactPhone:   `UPDATE phones SET title = ?, phone = ? WHERE phone_id = ? AND institution_id = ?`,
		repository.ContactWebsite: `UPDATE websites SET title = ?, website = ? WHERE website_id = ? AND institution_id = ?`,
	}
	contactDeleteQuery = map[repository.ContactKind]string{
		repository.ContactEmail:   `DELETE FROM emails WHERE email_id = ? AND institution_id = ?`,
		repository.ContactPhone:   `DELETE FROM phones WHERE phone_id = ? AND institution_id = ?`,
		repository.ContactWebsite: `DELETE FROM websites WHERE website_id = ? AND institution_id = ?`,
	}
	contactListQuery = map[repository.ContactKind]string{
		repository.ContactEmail:   `SELECT email_id, title, email FROM emails WHERE institution_id = ? ORDER BY email_id`,
		repository.ContactPhone:   `SELECT phone_id, title, phone FROM phones WHERE institution_id = ? ORDER BY phone_id`,
		repository.ContactWebsite: `SELECT website_id, title, website FROM websites WHERE institution_id = ? ORDER BY website_id`,
	}
)

func (db *DB) AddContact(ctx context.Context, kind repository.ContactKind, institutionID int64, title, value string) error {
	if _, err := db.conn.ExecContext(ctx, contactInsertQuery[kind], institutionID, title, value); err != nil {
		return fmt.Errorf("sqlite: inserting contact for institution %d: %w", institutionID, err)
	}
	return nil
}

func (db *DB) UpdateContact(ctx context.Context, kind repository.ContactKind, id, institutionID int64, title, value string) error {
	res, err := db.conn.ExecContext(ctx, contactUpdateQuery[kind], title, value, id, institutionID)
	if err != nil {
		return fmt.Errorf("sqlite: updating contact %d: %w", id, err)
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

func (db *DB) DeleteContact(ctx context.Context, kind repository.ContactKind, id, institutionID int64) error {
	res, err := db.conn.ExecContext(ctx, contactDeleteQuery[kind], id, institutionID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting contact %d: %w", id, err)
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

func (db *DB) ListContacts(ctx context.Context, kind repository.ContactKind, institutionID int64) ([]model.ContactEntry, error) {
	rows, err := db.conn.QueryContext(ctx, contactListQuery[kind], institutionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing contacts for institution %d: %w", institutionID, err)
	}
	defer rows.Close()

	entries := []model.ContactEntry{}
	for rows.Next() {
		var e model.ContactEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Value); err != nil {
			return nil, fmt.Errorf("sqlite: scanning contact row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	return db.categories(ctx,
		`SELECT category_id, category FROM categories ORDER BY category_id`)
}

func (db *DB) InstitutionCategories(ctx context.Context, institutionID int64) ([]model.Category, error) {
	return db.categories(ctx,
		`SELECT category_id, category
		 FROM categories
		 JOIN institution_categories USING (category_id)
		 WHERE institution_id = ?
		 ORDER BY category_id`, institutionID)
}

func (db *DB) categories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ReplaceInstitutionCategories drops the institution's category links
// and inserts the new set in one transaction. An unknown category id
// fails the whole replacement via the foreign key.
func (db *DB) ReplaceInstitutionCategories(ctx context.Context, institutionID int64, categoryIDs []int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning category replace tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM institution_categories WHERE institution_id = ?`, institutionID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing categories for institution %d: %w", institutionID, err)
	}
	for _, id := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO institution_categories (institution_id, category_id) VALUES (?, ?)`,
			institutionID, id,
		); err != nil {
			return fmt.Errorf("sqlite: linking category %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing category replace: %w", err)
	}
	return nil
}

func (db *DB) InstitutionsByCategory(ctx context.Context, categoryID int64) ([]model.InstitutionRef, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.institution_id, i.avatar_image, u.name
		 FROM institutions i
		 JOIN users u USING (user_id)
		 JOIN institution_categories ic USING (institution_id)
		 WHERE ic.category_id = ? AND i.is_accepted = 1 AND i.is_enabled = 1
		 ORDER BY i.institution_id`, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing institutions for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	refs := []model.InstitutionRef{}
	for rows.Next() {
		var ref model.InstitutionRef
		if err := rows.Scan(&ref.InstitutionID, &ref.AvatarImage, &ref.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning institution row: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
