package event

import (
	"context"

	domain "clubhouse/internal/domain/event"
)

// Store persists club events.
type Store interface {
	Create(ctx context.Context, value domain.Event) (int64, error)
	ListByClub(ctx context.Context, clubID int64) ([]domain.Event, error)
}
