// Package sqlite implements the repository interfaces on an embedded
// SQLite database (modernc.org/sqlite, the pure-Go driver — no CGo).
//
// The DB type is an explicitly constructed, dependency-injected handle:
// opened once at process start, closed at shutdown, never a hidden
// singleton. Tests open ":memory:" databases. All durable state lives
// here; the store's transaction isolation is the only concurrency
// boundary the application relies on.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), applies the
// connection PRAGMAs and runs the migrations and reference-data seeds.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection; the pool must stay at
	// one connection or queries would see different (empty) databases.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write; foreign keys are off
	// by default in SQLite and the schema depends on ON DELETE CASCADE.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema and seeds the reference tables. Every
// statement is idempotent, so running against an existing database is
// safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			role_id INTEGER PRIMARY KEY,
			role    TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS users (
			user_id  INTEGER PRIMARY KEY AUTOINCREMENT,
			email    TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name     TEXT NOT NULL,
			role_id  INTEGER NOT NULL REFERENCES roles(role_id)
		);

		CREATE TABLE IF NOT EXISTS tokens (
			token    TEXT PRIMARY KEY,
			user_id  INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			is_valid INTEGER NOT NULL DEFAULT 1
		);
		CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id);

		CREATE TABLE IF NOT EXISTS person (
			person_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE,
			avatar_image TEXT NOT NULL DEFAULT 'default_avatar.jpg',
			is_enabled   INTEGER NOT NULL DEFAULT 1,
			is_accepted  INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS institutions (
			institution_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE,
			avatar_image   TEXT NOT NULL DEFAULT 'default_avatar.jpg',
			banner_image   TEXT NOT NULL DEFAULT 'default_banner.jpg',
			description    TEXT NOT NULL DEFAULT '',
			is_enabled     INTEGER NOT NULL DEFAULT 1,
			is_accepted    INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS news (
			news_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			description    TEXT NOT NULL,
			banner_image   TEXT,
			timestamp      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_news_institution_id ON news(institution_id);

		CREATE TABLE IF NOT EXISTS likes (
			person_id INTEGER NOT NULL REFERENCES person(person_id) ON DELETE CASCADE,
			news_id   INTEGER NOT NULL REFERENCES news(news_id) ON DELETE CASCADE,
			PRIMARY KEY (person_id, news_id)
		);

		CREATE TABLE IF NOT EXISTS events (
			event_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			event_start    DATETIME NOT NULL,
			event_end      DATETIME NOT NULL,
			title          TEXT NOT NULL,
			location       TEXT NOT NULL,
			description    TEXT NOT NULL,
			banner_image   TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_institution_id ON events(institution_id);

		CREATE TABLE IF NOT EXISTS event_links (
			event_link_id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id      INTEGER NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
			title         TEXT NOT NULL,
			link          TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS emails (
			email_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			title          TEXT NOT NULL,
			email          TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS phones (
			phone_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			title          TEXT NOT NULL,
			phone          TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS websites (
			website_id     INTEGER PRIMARY KEY AUTOINCREMENT,
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			title          TEXT NOT NULL,
			website        TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS categories (
			category_id INTEGER PRIMARY KEY AUTOINCREMENT,
			category    TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS institution_categories (
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			category_id    INTEGER NOT NULL REFERENCES categories(category_id) ON DELETE CASCADE,
			PRIMARY KEY (institution_id, category_id)
		);

		CREATE TABLE IF NOT EXISTS following (
			person_id      INTEGER NOT NULL REFERENCES person(person_id) ON DELETE CASCADE,
			institution_id INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			PRIMARY KEY (person_id, institution_id)
		);

		CREATE TABLE IF NOT EXISTS messaging_rooms (
			messaging_room_id INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id         INTEGER NOT NULL REFERENCES person(person_id) ON DELETE CASCADE,
			institution_id    INTEGER NOT NULL REFERENCES institutions(institution_id) ON DELETE CASCADE,
			UNIQUE (person_id, institution_id)
		);

		CREATE TABLE IF NOT EXISTS messages (
			message_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			messaging_room_id INTEGER NOT NULL REFERENCES messaging_rooms(messaging_room_id) ON DELETE CASCADE,
			message           TEXT NOT NULL,
			from_person       INTEGER NOT NULL,
			timestamp         DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages(messaging_room_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Reference data. Role ids are fixed: registration hard-codes them.
	_, err = db.conn.Exec(`
		INSERT OR IGNORE INTO roles (role_id, role) VALUES
			(1, 'admin'),
			(2, 'person'),
			(3, 'institution');

		INSERT OR IGNORE INTO categories (category) VALUES
			('óvoda'),
			('általános iskola'),
			('középiskola'),
			('egyetem'),
			('kollégium'),
			('egyéb');
	`)
	if err != nil {
		return fmt.Errorf("seeding reference data: %w", err)
	}

	return nil
}

// now returns the wall-clock timestamp stored on inserted rows.
// Timestamps are written from Go rather than via SQL defaults so they
// scan back into time.Time consistently.
func now() time.Time {
	return time.Now().UTC()
}
