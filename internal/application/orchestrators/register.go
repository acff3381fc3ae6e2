package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/account"
)

// AccountStoreForRegister defines the store interface needed by Register.
type AccountStoreForRegister interface {
	Create(ctx context.Context, a account.Account) (int64, error)
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForRegister
}

// ErrEmailAlreadyExists is returned when the email belongs to another account.
var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteRegister creates a student account.
// PRE: none
// POST: Account created with role student and a bcrypt hash; no row on any error
// INVARIANT: Email must be unique
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (AuthResult, error) {
	acct, err := newAccount(input.Name, input.Email, input.Password, account.RoleStudent)
	if err != nil {
		return AuthResult{}, err
	}

	id, err := deps.AccountStore.Create(ctx, acct)
	if errors.Is(err, storage.ErrConflict) {
		slog.Info("auth_event", "event", "register_failed", "email", acct.Email, "reason", "duplicate_email")
		return AuthResult{}, ErrEmailAlreadyExists
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("create account: %w", err)
	}
	acct.ID = id

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return authResultFor(acct), nil
}

// newAccount validates the fields and hashes the password.
func newAccount(name, email, password, role string) (account.Account, error) {
	acct := account.Account{
		Name:      strings.TrimSpace(name),
		Email:     account.NormalizeEmail(email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(password); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}
