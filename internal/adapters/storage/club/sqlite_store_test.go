package club

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"clubhouse/internal/adapters/storage"
	domain "clubhouse/internal/domain/club"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("init: %v", err)
	}
	return db
}

func TestSQLiteStore_CreateListGet(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	chess, err := store.Create(ctx, domain.Club{Name: "Chess", Description: "Board games"})
	if err != nil {
		t.Fatalf("Create chess: %v", err)
	}
	drama, err := store.Create(ctx, domain.Club{Name: "Drama"})
	if err != nil {
		t.Fatalf("Create drama: %v", err)
	}

	clubs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clubs) != 2 || clubs[0].ID != chess || clubs[1].ID != drama {
		t.Fatalf("List = %+v, want chess then drama", clubs)
	}

	got, err := store.GetByID(ctx, chess)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Chess" || got.Description != "Board games" || got.CreatedBy != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestSQLiteStore_DuplicateName(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	store.Create(ctx, domain.Club{Name: "Chess"})
	if _, err := store.Create(ctx, domain.Club{Name: "Chess"}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Create err = %v, want ErrConflict", err)
	}

	id, _ := store.Create(ctx, domain.Club{Name: "Go"})
	err := store.Update(ctx, domain.Club{ID: id, Name: "Chess"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Update err = %v, want ErrConflict", err)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	id, _ := store.Create(ctx, domain.Club{Name: "Chess"})
	if err := store.Update(ctx, domain.Club{ID: id, Name: "Chess Society", Description: "Openings"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := store.GetByID(ctx, id)
	if got.Name != "Chess Society" || got.Description != "Openings" {
		t.Errorf("got %+v", got)
	}

	if err := store.Update(ctx, domain.Club{ID: 999, Name: "Ghost"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update missing err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_DeleteRemovesDependents(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	id, _ := store.Create(ctx, domain.Club{Name: "Chess"})
	db.Exec(`INSERT INTO users (user_id, name, email, password, role, created_at) VALUES (1, 'A', 'a@x.edu', 'h', 'student', '')`)
	db.Exec(`INSERT INTO memberships (user_id, club_id, role) VALUES (1, ?, 'member')`, id)
	db.Exec(`INSERT INTO events (club_id, title, description, event_date) VALUES (?, 'Open', '', '2025-12-01')`, id)

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID after delete err = %v, want ErrNotFound", err)
	}
	for _, table := range []string{"memberships", "events"} {
		var n int
		db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE club_id = ?", id).Scan(&n)
		if n != 0 {
			t.Errorf("%s rows = %d, want 0", table, n)
		}
	}

	if err := store.Delete(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}
