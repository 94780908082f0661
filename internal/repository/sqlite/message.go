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

// compile-time check that *DB implements repository.MessageRepository
var _ repository.MessageRepository = (*DB)(nil)

// Room membership and partner columns keyed by which side of the
// conversation the caller sits on.
var (
	roomMemberColumn = map[repository.ProfileKind]string{
		repository.ProfilePerson:      "person_id",
		repository.ProfileInstitution: "institution_id",
	}
	roomPartnerColumn = map[repository.ProfileKind]string{
		repository.ProfilePerson:      "institution_id",
		repository.ProfileInstitution: "person_id",
	}
)

// MessageCount totals the messages across the profile's rooms. Clients
// poll this to detect conversation changes cheaply.
func (db *DB) MessageCount(ctx context.Context, kind repository.ProfileKind, profileID int64) (int64, error) {
	query := `SELECT COUNT(*)
		 FROM messages
		 JOIN messaging_rooms USING (messaging_room_id)
		 WHERE ` + roomMemberColumn[kind] + ` = ?`

	var count int64
	if err := db.conn.QueryRowContext(ctx, query, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: counting messages for profile %d: %w", profileID, err)
	}
	return count, nil
}

// Rooms lists the profile's rooms ordered by latest activity, each with
// its most recent message. Rooms with no messages yet are included with
// an empty preview.
func (db *DB) Rooms(ctx context.Context, kind repository.ProfileKind, profileID int64) ([]model.RoomSummary, error) {
	query := `
		SELECT r.messaging_room_id, r.` + roomPartnerColumn[kind] + `,
		       COALESCE(m.message, ''), m.timestamp, COALESCE(m.from_person, 0)
		FROM messaging_rooms r
		LEFT JOIN messages m ON m.message_id = (
			SELECT message_id FROM messages
			WHERE messaging_room_id = r.messaging_room_id
			ORDER BY message_id DESC LIMIT 1
		)
		WHERE r.` + roomMemberColumn[kind] + ` = ?
		ORDER BY m.message_id DESC`

	rows, err := db.conn.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing rooms for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	summaries := []model.RoomSummary{}
	for rows.Next() {
		var s model.RoomSummary
		var ts sql.NullTime
		if err := rows.Scan(&s.RoomID, &s.PartnerID, &s.LastMessage, &ts, &s.FromPerson); err != nil {
			return nil, fmt.Errorf("sqlite: scanning room row: %w", err)
		}
		if ts.Valid {
			s.LastMessageTime = ts.Time
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// RoomMessages returns the room's transcript newest-first along with
// the partner's profile id. Membership is enforced in the room lookup:
// a room the caller does not belong to is reported as missing.
func (db *DB) RoomMessages(ctx context.Context, roomID int64, kind repository.ProfileKind, profileID int64) ([]model.Message, int64, error) {
	query := `SELECT ` + roomPartnerColumn[kind] + `
		 FROM messaging_rooms
		 WHERE messaging_room_id = ? AND ` + roomMemberColumn[kind] + ` = ?`

	var partnerID int64
	err := db.conn.QueryRowContext(ctx, query, roomID, profileID).Scan(&partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, apperror.NotFound("nem létező beszélgetés")
		}
		return nil, 0, fmt.Errorf("sqlite: resolving room %d: %w", roomID, err)
	}

	messages, err := db.roomTranscript(ctx, roomID)
	if err != nil {
		return nil, 0, err
	}
	return messages, partnerID, nil
}

// SendFromPerson appends to the pair's room, creating the room first
// when it does not exist yet. Lookup, create and append run in a single
// transaction so concurrent first messages cannot race into duplicate
// rooms.
func (db *DB) SendFromPerson(ctx context.Context, personID, institutionID int64, text string) (int64, *model.Message, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("sqlite: beginning send tx: %w", err)
	}
	defer tx.Rollback()

	roomID, err := roomForPair(ctx, tx, personID, institutionID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, nil, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO messaging_rooms (person_id, institution_id) VALUES (?, ?)`,
			personID, institutionID,
		)
		if err != nil {
			return 0, nil, fmt.Errorf("sqlite: creating room: %w", err)
		}
		roomID, err = res.LastInsertId()
		if err != nil {
			return 0, nil, fmt.Errorf("sqlite: reading inserted room id: %w", err)
		}
	}

	msg, err := appendMessage(ctx, tx, roomID, text, true)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("sqlite: committing send: %w", err)
	}
	return roomID, msg, nil
}

// SendFromInstitution appends to an existing room only. Institutions
// never open conversations; the person has to write first.
func (db *DB) SendFromInstitution(ctx context.Context, institutionID, personID int64, text string) (int64, *model.Message, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("sqlite: beginning send tx: %w", err)
	}
	defer tx.Rollback()

	roomID, err := roomForPair(ctx, tx, personID, institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, apperror.NotFound("Intézmények nem indíthatnak új beszélgetést")
		}
		return 0, nil, err
	}

	msg, err := appendMessage(ctx, tx, roomID, text, false)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("sqlite: committing send: %w", err)
	}
	return roomID, msg, nil
}

// EnsureRoom returns the pair's room id, creating an empty room when
// the pair never talked before.
func (db *DB) EnsureRoom(ctx context.Context, personID, institutionID int64) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning room tx: %w", err)
	}
	defer tx.Rollback()

	roomID, err := roomForPair(ctx, tx, personID, institutionID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO messaging_rooms (person_id, institution_id) VALUES (?, ?)`,
			personID, institutionID,
		)
		if err != nil {
			return 0, fmt.Errorf("sqlite: creating room: %w", err)
		}
		roomID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("sqlite: reading inserted room id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing room: %w", err)
	}
	return roomID, nil
}

// MessagesForPair returns the pair's transcript newest-first, empty
// when the pair has no room or no messages yet.
func (db *DB) MessagesForPair(ctx context.Context, personID, institutionID int64) ([]model.Message, error) {
	var roomID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT messaging_room_id FROM messaging_rooms WHERE person_id = ? AND institution_id = ?`,
		personID, institutionID,
	).Scan(&roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []model.Message{}, nil
		}
		return nil, fmt.Errorf("sqlite: resolving pair room: %w", err)
	}
	return db.roomTranscript(ctx, roomID)
}

func roomForPair(ctx context.Context, tx *sql.Tx, personID, institutionID int64) (int64, error) {
	var roomID int64
	err := tx.QueryRowContext(ctx,
		`SELECT messaging_room_id FROM messaging_rooms WHERE person_id = ? AND institution_id = ?`,
		personID, institutionID,
	).Scan(&roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("sqlite: looking up pair room: %w", err)
	}
	return roomID, nil
}

func appendMessage(ctx context.Context, tx *sql.Tx, roomID int64, text string, fromPerson bool) (*model.Message, error) {
	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (messaging_room_id, message, from_person, timestamp) VALUES (?, ?, ?, ?)`,
		roomID, text, fromPerson, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting message: %w", err)
	}
	msgID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading inserted message id: %w", err)
	}
	return &model.Message{
		MessageID:  msgID,
		RoomID:     roomID,
		Text:       text,
		FromPerson: fromPerson,
		Timestamp:  ts,
	}, nil
}

func (db *DB) roomTranscript(ctx context.Context, roomID int64) ([]model.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT message_id, messaging_room_id, message, from_person, timestamp
		 FROM messages
		 WHERE messaging_room_id = ?
		 ORDER BY message_id DESC`, roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages for room %d: %w", roomID, err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.MessageID, &m.RoomID, &m.Text, &m.FromPerson, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
