package projections

import (
	"context"
	"errors"
	"fmt"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/club"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/membership"
)

// ClubReader reads clubs.
type ClubReader interface {
	List(ctx context.Context) ([]club.Club, error)
	GetByID(ctx context.Context, id int64) (club.Club, error)
}

// MembershipReader reads memberships.
type MembershipReader interface {
	Get(ctx context.Context, userID, clubID int64) (membership.Membership, error)
	ListMembers(ctx context.Context, clubID int64) ([]membership.Member, error)
}

// EventReader reads a club's events.
type EventReader interface {
	ListByClub(ctx context.Context, clubID int64) ([]event.Event, error)
}

// ListClubsDeps holds dependencies for ListClubs.
type ListClubsDeps struct {
	ClubStore ClubReader
}

// QueryListClubs returns every club.
// PRE: none
// POST: Clubs ordered by ID ascending; empty slice when there are none
func QueryListClubs(ctx context.Context, deps ListClubsDeps) ([]club.Club, error) {
	clubs, err := deps.ClubStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	if clubs == nil {
		clubs = []club.Club{}
	}
	return clubs, nil
}

// GetClubDeps holds dependencies for GetClub.
type GetClubDeps struct {
	ClubStore ClubReader
}

// QueryGetClub returns a single club.
// PRE: none
// POST: Returns the club or club.ErrNotFound
func QueryGetClub(ctx context.Context, id int64, deps GetClubDeps) (club.Club, error) {
	c, err := deps.ClubStore.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return club.Club{}, club.ErrNotFound
	}
	if err != nil {
		return club.Club{}, fmt.Errorf("get club %d: %w", id, err)
	}
	return c, nil
}

// ClubDetailQuery carries query parameters.
type ClubDetailQuery struct {
	ClubID   int64
	ViewerID int64
}

// ClubDetailResult is everything the club page shows.
type ClubDetailResult struct {
	Club    club.Club
	Members []membership.Member
	Events  []event.Event
	// Viewer is the viewing user's membership; nil if they have not joined.
	Viewer *membership.Membership
}

// IsCoordinator reports whether the viewer coordinates the club.
func (r ClubDetailResult) IsCoordinator() bool {
	return r.Viewer != nil && r.Viewer.IsCoordinator()
}

// ClubDetailDeps holds dependencies for ClubDetail.
type ClubDetailDeps struct {
	ClubStore       ClubReader
	MembershipStore MembershipReader
	EventStore      EventReader
}

// QueryClubDetail loads a club with its members, events and the viewer's membership.
// PRE: none
// POST: club.ErrNotFound if the club is missing; members in join order,
// events soonest first
func QueryClubDetail(ctx context.Context, query ClubDetailQuery, deps ClubDetailDeps) (ClubDetailResult, error) {
	c, err := QueryGetClub(ctx, query.ClubID, GetClubDeps{ClubStore: deps.ClubStore})
	if err != nil {
		return ClubDetailResult{}, err
	}
	result := ClubDetailResult{Club: c}

	if result.Members, err = deps.MembershipStore.ListMembers(ctx, c.ID); err != nil {
		return ClubDetailResult{}, fmt.Errorf("list members of club %d: %w", c.ID, err)
	}
	if result.Events, err = deps.EventStore.ListByClub(ctx, c.ID); err != nil {
		return ClubDetailResult{}, fmt.Errorf("list events of club %d: %w", c.ID, err)
	}

	if query.ViewerID > 0 {
		m, err := deps.MembershipStore.Get(ctx, query.ViewerID, c.ID)
		switch {
		case err == nil:
			result.Viewer = &m
		case !errors.Is(err, storage.ErrNotFound):
			return ClubDetailResult{}, fmt.Errorf("viewer membership: %w", err)
		}
	}
	return result, nil
}

// MembershipGetter reads a single membership.
type MembershipGetter interface {
	Get(ctx context.Context, userID, clubID int64) (membership.Membership, error)
}

// QueryClubRole returns the user's role in the club, or "" when not a member.
// PRE: userID > 0, clubID > 0
// POST: Store failures other than not-found are returned wrapped
func QueryClubRole(ctx context.Context, userID, clubID int64, store MembershipGetter) (string, error) {
	m, err := store.Get(ctx, userID, clubID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("membership of user %d in club %d: %w", userID, clubID, err)
	}
	return m.Role, nil
}
