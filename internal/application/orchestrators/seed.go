package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"clubhouse/internal/domain/account"
	"clubhouse/internal/domain/club"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/membership"
)

// SeedAccountStore is the account access needed for seeding.
type SeedAccountStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, a account.Account) (int64, error)
}

// SeedClubStore creates clubs.
type SeedClubStore interface {
	Create(ctx context.Context, c club.Club) (int64, error)
}

// SeedMembershipStore adds memberships with an explicit role.
type SeedMembershipStore interface {
	Add(ctx context.Context, m membership.Membership) error
}

// SeedDeps holds dependencies for Seed.
type SeedDeps struct {
	AccountStore    SeedAccountStore
	ClubStore       SeedClubStore
	MembershipStore SeedMembershipStore
	EventStore      EventStoreForCreate
}

// SeedConfig carries the credentials of the demo accounts.
type SeedConfig struct {
	AdminEmail      string
	AdminPassword   string
	StudentPassword string
	// AdminOnly skips the demo students, clubs and event.
	AdminOnly bool
}

// ExecuteSeed loads demo data into an empty database.
// PRE: Database is initialized
// POST: If no accounts existed: one admin, and unless AdminOnly two students,
// two clubs, their memberships and one event. Otherwise nothing changes.
func ExecuteSeed(ctx context.Context, deps SeedDeps, cfg SeedConfig) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	adminID, err := seedAccount(ctx, deps, "Admin User", cfg.AdminEmail, cfg.AdminPassword, account.RoleAdmin)
	if err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", account.NormalizeEmail(cfg.AdminEmail))
	if cfg.AdminOnly {
		return nil
	}

	student1, err := seedAccount(ctx, deps, "Student One", "student1@college.edu", cfg.StudentPassword, account.RoleStudent)
	if err != nil {
		return err
	}
	student2, err := seedAccount(ctx, deps, "Student Two", "student2@college.edu", cfg.StudentPassword, account.RoleStudent)
	if err != nil {
		return err
	}

	coding, err := deps.ClubStore.Create(ctx, club.Club{
		Name:        "Coding Club",
		Description: "A club for coding enthusiasts and programmers",
		CreatedBy:   adminID,
	})
	if err != nil {
		return fmt.Errorf("seed club: %w", err)
	}
	drama, err := deps.ClubStore.Create(ctx, club.Club{
		Name:        "Drama Society",
		Description: "Express yourself through drama and theater",
		CreatedBy:   adminID,
	})
	if err != nil {
		return fmt.Errorf("seed club: %w", err)
	}

	memberships := []membership.Membership{
		{UserID: student1, ClubID: coding, Role: membership.RoleCoordinator},
		{UserID: student2, ClubID: coding, Role: membership.RoleMember},
		{UserID: student2, ClubID: drama, Role: membership.RoleMember},
	}
	for _, m := range memberships {
		if err := deps.MembershipStore.Add(ctx, m); err != nil {
			return fmt.Errorf("seed membership: %w", err)
		}
	}

	date, _ := event.ParseDate("2025-11-15")
	if _, err := deps.EventStore.Create(ctx, event.Event{
		ClubID:      coding,
		Title:       "Hackathon 2025",
		Description: "24-hour coding competition with prizes",
		Date:        date,
	}); err != nil {
		return fmt.Errorf("seed event: %w", err)
	}

	slog.Info("seed_complete", "accounts", 3, "clubs", 2, "events", 1)
	return nil
}

func seedAccount(ctx context.Context, deps SeedDeps, name, email, password, role string) (int64, error) {
	acct, err := newAccount(name, email, password, role)
	if err != nil {
		return 0, fmt.Errorf("seed account %s: %w", email, err)
	}
	id, err := deps.AccountStore.Create(ctx, acct)
	if err != nil {
		return 0, fmt.Errorf("seed account %s: %w", email, err)
	}
	return id, nil
}
