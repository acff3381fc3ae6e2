package event

import (
	"context"
	"time"

	"clubhouse/internal/adapters/storage"
	domain "clubhouse/internal/domain/event"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts an event and returns its ID.
// PRE: value has been validated
// POST: Row inserted; storage.ErrNotFound if the club does not exist
func (s *SQLiteStore) Create(ctx context.Context, value domain.Event) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO events (club_id, title, description, event_date) VALUES (?, ?, ?, ?)",
		value.ClubID, value.Title, value.Description, value.DateString())
	if err != nil {
		return 0, storage.Classify(err)
	}
	return res.LastInsertId()
}

// ListByClub returns a club's events, soonest first.
// PRE: none
// POST: Events ordered by date then ID
func (s *SQLiteStore) ListByClub(ctx context.Context, clubID int64) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, club_id, title, description, event_date
		 FROM events WHERE club_id = ? ORDER BY event_date ASC, event_id ASC`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		var e domain.Event
		var date string
		if err := rows.Scan(&e.ID, &e.ClubID, &e.Title, &e.Description, &date); err != nil {
			return nil, err
		}
		e.Date = parseDate(date)
		results = append(results, e)
	}
	return results, rows.Err()
}

// parseDate reads the stored day. The driver hands DATE columns back as
// timestamps, so anything past the day is dropped.
func parseDate(s string) time.Time {
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	d, _ := time.Parse(domain.DateLayout, s)
	return d
}
