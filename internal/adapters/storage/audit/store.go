package audit

import (
	"context"

	domain "clubhouse/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event has been validated
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter.
	// PRE: limit > 0
	// POST: Returns events newest first
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List; nil fields match everything.
type Filter struct {
	Category *domain.Category
	Action   *domain.Action
	ActorID  *int64
}

var _ Store = (*SQLiteStore)(nil)
