package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/club"
)

// ClubStoreForWrite defines the store interface needed by the club commands.
type ClubStoreForWrite interface {
	Create(ctx context.Context, c club.Club) (int64, error)
	Update(ctx context.Context, c club.Club) error
	Delete(ctx context.Context, id int64) error
}

// ClubDeps holds dependencies for the club commands.
type ClubDeps struct {
	ClubStore ClubStoreForWrite
}

// ClubInput carries the club form. Both fields are always supplied.
type ClubInput struct {
	Name        string
	Description string
}

// ErrClubNameTaken is returned when another club already uses the name.
var ErrClubNameTaken = errors.New("a club with this name already exists")

func (in ClubInput) toClub(id, createdBy int64) (club.Club, error) {
	c := club.Club{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   createdBy,
	}
	return c, c.Validate()
}

// ExecuteCreateClub creates a club on behalf of an admin.
// PRE: creatorID is the acting admin
// POST: Club row exists; ErrClubNameTaken on a duplicate name
func ExecuteCreateClub(ctx context.Context, input ClubInput, creatorID int64, deps ClubDeps) (int64, error) {
	c, err := input.toClub(0, creatorID)
	if err != nil {
		return 0, err
	}
	id, err := deps.ClubStore.Create(ctx, c)
	if errors.Is(err, storage.ErrConflict) {
		return 0, ErrClubNameTaken
	}
	if err != nil {
		return 0, fmt.Errorf("create club: %w", err)
	}
	slog.Info("club_event", "event", "club_created", "club_id", id, "name", c.Name, "by", creatorID)
	return id, nil
}

// ExecuteUpdateClub replaces a club's name and description.
// PRE: id > 0
// POST: club.ErrNotFound if missing; ErrClubNameTaken on a duplicate name
func ExecuteUpdateClub(ctx context.Context, id int64, input ClubInput, deps ClubDeps) error {
	c, err := input.toClub(id, 0)
	if err != nil {
		return err
	}
	err = deps.ClubStore.Update(ctx, c)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return club.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrClubNameTaken
	case err != nil:
		return fmt.Errorf("update club %d: %w", id, err)
	}
	slog.Info("club_event", "event", "club_updated", "club_id", id)
	return nil
}

// ExecuteDeleteClub removes a club together with its events and memberships.
// PRE: id > 0
// POST: No club, membership or event row references id; a missing club is a no-op
func ExecuteDeleteClub(ctx context.Context, id int64, deps ClubDeps) error {
	err := deps.ClubStore.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete club %d: %w", id, err)
	}
	slog.Info("club_event", "event", "club_deleted", "club_id", id)
	return nil
}
