package account

import (
	"context"
	"fmt"
	"time"

	"clubhouse/internal/adapters/storage"
	domain "clubhouse/internal/domain/account"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

const selectAccount = "SELECT user_id, name, email, password, role, created_at FROM users"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id > 0
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount+" WHERE user_id = ?", id)
	entity, err := scanAccount(row.Scan)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, storage.Classify(err))
	}
	return entity, nil
}

// GetByEmail retrieves an Account by its normalised email.
// PRE: email is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount+" WHERE email = ?", domain.NormalizeEmail(email))
	entity, err := scanAccount(row.Scan)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %q: %w", email, storage.Classify(err))
	}
	return entity, nil
}

// Create inserts a new Account and returns its ID.
// PRE: entity has been validated and carries a password hash
// POST: Row inserted; storage.ErrConflict if the email is taken
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Account) (int64, error) {
	createdAt := entity.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password, role, created_at) VALUES (?, ?, ?, ?, ?)",
		entity.Name,
		domain.NormalizeEmail(entity.Email),
		entity.PasswordHash,
		entity.Role,
		createdAt.Format(timeLayout),
	)
	if err != nil {
		return 0, storage.Classify(err)
	}
	return res.LastInsertId()
}

// Count returns the total number of accounts.
// PRE: none
// POST: Returns total account count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return entity, nil
}
