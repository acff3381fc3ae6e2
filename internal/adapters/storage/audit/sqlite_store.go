package audit

import (
	"context"
	"time"

	"clubhouse/internal/adapters/storage"
	domain "clubhouse/internal/domain/audit"
)

// timeLayout is fixed-width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const eventFields = "id, timestamp, category, action, actor_id, actor_email, resource_type, resource_id, description, ip_address"

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event has been validated
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (`+eventFields+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(timeLayout), string(e.Category), string(e.Action),
		e.ActorID, e.ActorEmail, e.ResourceType, e.ResourceID, e.Description, e.IPAddress)
	return storage.Classify(err)
}

// List returns audit events matching filter, newest first.
// PRE: limit > 0
// POST: Returns at most limit events
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := "SELECT " + eventFields + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, string(*filter.Category))
	}
	if filter.Action != nil {
		query += " AND action = ?"
		args = append(args, string(*filter.Action))
	}
	if filter.ActorID != nil {
		query += " AND actor_id = ?"
		args = append(args, *filter.ActorID)
	}
	query += " ORDER BY timestamp DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.ActorID, &e.ActorEmail,
			&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(timeLayout, ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
