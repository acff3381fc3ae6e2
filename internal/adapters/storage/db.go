package storage

import (
	"database/sql"
	"fmt"
)

// DSN builds the modernc SQLite data source name for path.
// Pragmas are applied to every pooled connection, so foreign keys are
// enforced regardless of which connection serves a statement.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// Open opens the database at path, sizes the pool and verifies connectivity.
// PRE: maxOpenConns > 0
// POST: Returns a live *sql.DB or an error
func Open(path string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// InitDB initializes the database schema.
// Safe to run on every start: all statements are IF NOT EXISTS.
// PRE: db is a valid database connection
// POST: All tables and indexes exist
func InitDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS clubs (
		club_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_by INTEGER,
		FOREIGN KEY (created_by) REFERENCES users(user_id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS memberships (
		membership_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		club_id INTEGER NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
		FOREIGN KEY (club_id) REFERENCES clubs(club_id) ON DELETE CASCADE,
		UNIQUE(user_id, club_id)
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_club ON memberships(club_id);

	CREATE TABLE IF NOT EXISTS events (
		event_id INTEGER PRIMARY KEY AUTOINCREMENT,
		club_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		event_date DATE NOT NULL,
		FOREIGN KEY (club_id) REFERENCES clubs(club_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_events_club_date ON events(club_id, event_date);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_id INTEGER NOT NULL DEFAULT 0,
		actor_email TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
