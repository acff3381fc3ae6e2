package account

import (
	"context"

	domain "clubhouse/internal/domain/account"
)

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Create(ctx context.Context, value domain.Account) (int64, error)
	Count(ctx context.Context) (int, error)
}
