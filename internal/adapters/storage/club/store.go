package club

import (
	"context"

	domain "clubhouse/internal/domain/club"
)

// Store persists Club state.
type Store interface {
	List(ctx context.Context) ([]domain.Club, error)
	GetByID(ctx context.Context, id int64) (domain.Club, error)
	Create(ctx context.Context, value domain.Club) (int64, error)
	Update(ctx context.Context, value domain.Club) error
	Delete(ctx context.Context, id int64) error
}
