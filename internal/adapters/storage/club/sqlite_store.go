package club

import (
	"context"
	"database/sql"
	"fmt"

	"clubhouse/internal/adapters/storage"
	domain "clubhouse/internal/domain/club"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new club store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every club in creation order.
// PRE: none
// POST: Returns all clubs ordered by ID
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Club, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT club_id, name, description, created_by FROM clubs ORDER BY club_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Club
	for rows.Next() {
		c, err := scanClub(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// GetByID retrieves a Club by its ID.
// PRE: id > 0
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Club, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT club_id, name, description, created_by FROM clubs WHERE club_id = ?", id)
	c, err := scanClub(row.Scan)
	if err != nil {
		return domain.Club{}, fmt.Errorf("club %d: %w", id, storage.Classify(err))
	}
	return c, nil
}

// Create inserts a club and returns its ID.
// PRE: value has been validated
// POST: Row inserted; storage.ErrConflict if the name is taken
func (s *SQLiteStore) Create(ctx context.Context, value domain.Club) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO clubs (name, description, created_by) VALUES (?, ?, ?)",
		value.Name, value.Description, nullableID(value.CreatedBy))
	if err != nil {
		return 0, storage.Classify(err)
	}
	return res.LastInsertId()
}

// Update rewrites the name and description of an existing club.
// PRE: value has been validated, value.ID > 0
// POST: storage.ErrNotFound if no such club, storage.ErrConflict on a name clash
func (s *SQLiteStore) Update(ctx context.Context, value domain.Club) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE clubs SET name = ?, description = ? WHERE club_id = ?",
		value.Name, value.Description, value.ID)
	if err != nil {
		return storage.Classify(err)
	}
	return requireRow(res, value.ID)
}

// Delete removes a club with its events and memberships in one transaction.
// PRE: id > 0
// POST: Club and all dependents are gone, or nothing changed
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE club_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM memberships WHERE club_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM clubs WHERE club_id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("club %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

// scanClub extracts a Club from a row scanner function.
func scanClub(scan func(dest ...any) error) (domain.Club, error) {
	var c domain.Club
	var createdBy sql.NullInt64
	if err := scan(&c.ID, &c.Name, &c.Description, &createdBy); err != nil {
		return domain.Club{}, err
	}
	c.CreatedBy = createdBy.Int64
	return c, nil
}
