package membership

import (
	"context"

	domain "clubhouse/internal/domain/membership"
)

// Store persists club memberships.
type Store interface {
	Join(ctx context.Context, userID, clubID int64) (bool, error)
	Add(ctx context.Context, value domain.Membership) error
	Leave(ctx context.Context, userID, clubID int64) error
	Get(ctx context.Context, userID, clubID int64) (domain.Membership, error)
	ListMembers(ctx context.Context, clubID int64) ([]domain.Member, error)
	ListUserIDs(ctx context.Context, clubID int64) ([]int64, error)
}
