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

// compile-time check that *DB implements repository.EventRepository
var _ repository.EventRepository = (*DB)(nil)

func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning event insert tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (institution_id, event_start, event_end, title, location, description, banner_image)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.InstitutionID, event.Start, event.End, event.Title,
		event.Location, event.Description, event.BannerImage,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting event: %w", err)
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted event id: %w", err)
	}
	event.EventID = eventID

	if err := insertEventLinks(ctx, tx, eventID, event.Links); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing event insert: %w", err)
	}
	return nil
}

// UpdateEvent rewrites the event row and replaces its entire link set in
// one transaction. Partial link updates are not supported: the caller
// always sends the full list.
func (db *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning event update tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE events
		 SET event_start = ?, event_end = ?, title = ?, location = ?, description = ?, banner_image = ?
		 WHERE event_id = ? AND institution_id = ?`,
		event.Start, event.End, event.Title, event.Location,
		event.Description, event.BannerImage, event.EventID, event.InstitutionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating event %d: %w", event.EventID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("nem létező id-t szeretnél módosítani")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM event_links WHERE event_id = ?`, event.EventID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing event links: %w", err)
	}
	if err := insertEventLinks(ctx, tx, event.EventID, event.Links); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing event update: %w", err)
	}
	return nil
}

func insertEventLinks(ctx context.Context, tx *sql.Tx, eventID int64, links []model.EventLink) error {
	for _, l := range links {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_links (event_id, title, link) VALUES (?, ?, ?)`,
			eventID, l.Title, l.Link,
		); err != nil {
			return fmt.Errorf("sqlite: inserting event link: %w", err)
		}
	}
	return nil
}

func (db *DB) DeleteEvent(ctx context.Context, eventID, institutionID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM events WHERE event_id = ? AND institution_id = ?`,
		eventID, institutionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event %d: %w", eventID, err)
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

func (db *DB) EventBannerImage(ctx context.Context, eventID, institutionID int64) (*string, error) {
	var banner *string
	err := db.conn.QueryRowContext(ctx,
		`SELECT banner_image FROM events WHERE event_id = ? AND institution_id = ?`,
		eventID, institutionID,
	).Scan(&banner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("nem létező esemény")
		}
		return nil, fmt.Errorf("sqlite: loading event banner %d: %w", eventID, err)
	}
	return banner, nil
}

// ListEventsByInstitution returns the institution's events ordered by
// start time, links attached.
func (db *DB) ListEventsByInstitution(ctx context.Context, institutionID int64) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT event_id, institution_id, event_start, event_end, title, location, description, banner_image
		 FROM events
		 WHERE institution_id = ?
		 ORDER BY event_start ASC`, institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events for institution %d: %w", institutionID, err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.EventID, &e.InstitutionID, &e.Start, &e.End,
			&e.Title, &e.Location, &e.Description, &e.BannerImage); err != nil {
			return nil, fmt.Errorf("sqlite: scanning event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		links, err := db.eventLinks(ctx, events[i].EventID)
		if err != nil {
			return nil, err
		}
		events[i].Links = links
	}
	return events, nil
}

// ListEventsForInstitutions returns events of the given institutions
// ordered by start time with the publisher identity. limit <= 0 returns
// everything.
func (db *DB) ListEventsForInstitutions(ctx context.Context, institutionIDs []int64, limit int) ([]model.FeedEvent, error) {
	if len(institutionIDs) == 0 {
		return []model.FeedEvent{}, nil
	}

	query := `
		SELECT e.event_id, e.institution_id, e.event_start, e.event_end,
		       e.title, e.location, e.description, e.banner_image,
		       i.institution_id, i.avatar_image, u.name, i.banner_image
		FROM events e
		JOIN institutions i USING (institution_id)
		JOIN users u USING (user_id)
		WHERE e.institution_id IN (` + placeholders(len(institutionIDs)) + `)
		ORDER BY e.event_start ASC`

	args := make([]any, 0, len(institutionIDs)+1)
	for _, id := range institutionIDs {
		args = append(args, id)
	}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	events := []model.FeedEvent{}
	for rows.Next() {
		var fe model.FeedEvent
		if err := rows.Scan(&fe.EventID, &fe.InstitutionID, &fe.Start, &fe.End,
			&fe.Title, &fe.Location, &fe.Description, &fe.BannerImage,
			&fe.Institution.InstitutionID, &fe.Institution.AvatarImage,
			&fe.Institution.Name, &fe.BannerRef); err != nil {
			return nil, fmt.Errorf("sqlite: scanning feed event row: %w", err)
		}
		events = append(events, fe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		links, err := db.eventLinks(ctx, events[i].EventID)
		if err != nil {
			return nil, err
		}
		events[i].Links = links
	}
	return events, nil
}

func (db *DB) eventLinks(ctx context.Context, eventID int64) ([]model.EventLink, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT event_link_id, title, link FROM event_links WHERE event_id = ?`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing links for event %d: %w", eventID, err)
	}
	defer rows.Close()

	links := []model.EventLink{}
	for rows.Next() {
		var l model.EventLink
		if err := rows.Scan(&l.LinkID, &l.Title, &l.Link); err != nil {
			return nil, fmt.Errorf("sqlite: scanning event link row: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
