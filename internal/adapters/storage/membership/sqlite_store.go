package membership

import (
	"context"
	"fmt"

	"clubhouse/internal/adapters/storage"
	domain "clubhouse/internal/domain/membership"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new membership store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Join adds userID to clubID as a plain member.
// PRE: userID > 0, clubID > 0
// POST: Returns true if a row was inserted, false if the user was already a
// member (existing role untouched); storage.ErrNotFound for an unknown club or user
func (s *SQLiteStore) Join(ctx context.Context, userID, clubID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (user_id, club_id, role) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, club_id) DO NOTHING`,
		userID, clubID, domain.RoleMember)
	if err != nil {
		return false, storage.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Add inserts a membership with an explicit role, replacing the role of an
// existing (user, club) pair.
// PRE: value has been validated
// POST: Exactly one row exists for (UserID, ClubID) with value.Role
func (s *SQLiteStore) Add(ctx context.Context, value domain.Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (user_id, club_id, role) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, club_id) DO UPDATE SET role = excluded.role`,
		value.UserID, value.ClubID, value.Role)
	return storage.Classify(err)
}

// Leave removes the membership if present.
// PRE: none
// POST: No row exists for (userID, clubID)
func (s *SQLiteStore) Leave(ctx context.Context, userID, clubID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM memberships WHERE user_id = ? AND club_id = ?", userID, clubID)
	return err
}

// Get returns the membership of userID in clubID.
// PRE: none
// POST: Returns the membership or storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, userID, clubID int64) (domain.Membership, error) {
	var m domain.Membership
	err := s.db.QueryRowContext(ctx,
		"SELECT membership_id, user_id, club_id, role FROM memberships WHERE user_id = ? AND club_id = ?",
		userID, clubID).Scan(&m.ID, &m.UserID, &m.ClubID, &m.Role)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("membership %d/%d: %w", userID, clubID, storage.Classify(err))
	}
	return m, nil
}

// ListMembers returns the club's members with their display fields.
// PRE: none
// POST: Members ordered by join order (membership ID)
func (s *SQLiteStore) ListMembers(ctx context.Context, clubID int64) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.user_id, u.name, u.email, m.role
		 FROM memberships m JOIN users u ON u.user_id = m.user_id
		 WHERE m.club_id = ? ORDER BY m.membership_id ASC`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// ListUserIDs returns the IDs of every member of clubID.
// PRE: none
// POST: IDs ordered by membership ID
func (s *SQLiteStore) ListUserIDs(ctx context.Context, clubID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM memberships WHERE club_id = ? ORDER BY membership_id ASC", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
