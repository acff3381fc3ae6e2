package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/club"
)

// MembershipStoreForJoin defines the store interface needed by Join and Leave.
type MembershipStoreForJoin interface {
	Join(ctx context.Context, userID, clubID int64) (bool, error)
	Leave(ctx context.Context, userID, clubID int64) error
}

// MembershipDeps holds dependencies for Join and Leave.
type MembershipDeps struct {
	MembershipStore MembershipStoreForJoin
}

// JoinResult reports whether the user was already in the club.
type JoinResult struct {
	AlreadyMember bool
}

// ExecuteJoinClub adds the user to the club as a member.
// PRE: userID is the acting user
// POST: Exactly one membership for (userID, clubID); an existing role is kept
func ExecuteJoinClub(ctx context.Context, userID, clubID int64, deps MembershipDeps) (JoinResult, error) {
	created, err := deps.MembershipStore.Join(ctx, userID, clubID)
	if errors.Is(err, storage.ErrNotFound) {
		return JoinResult{}, club.ErrNotFound
	}
	if err != nil {
		return JoinResult{}, fmt.Errorf("join club %d: %w", clubID, err)
	}
	slog.Info("membership_event", "event", "club_joined", "user_id", userID, "club_id", clubID, "already_member", !created)
	return JoinResult{AlreadyMember: !created}, nil
}

// ExecuteLeaveClub removes the user's membership, if any.
// PRE: userID is the acting user
// POST: No membership for (userID, clubID)
func ExecuteLeaveClub(ctx context.Context, userID, clubID int64, deps MembershipDeps) error {
	if err := deps.MembershipStore.Leave(ctx, userID, clubID); err != nil {
		return fmt.Errorf("leave club %d: %w", clubID, err)
	}
	slog.Info("membership_event", "event", "club_left", "user_id", userID, "club_id", clubID)
	return nil
}
