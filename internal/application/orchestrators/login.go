package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is the user snapshot a session is created from.
type AuthResult struct {
	AccountID int64
	Name      string
	Email     string
	Role      string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
}

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: none
// POST: Returns the account snapshot on success, ErrInvalidCredentials otherwise
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (AuthResult, error) {
	email := account.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		checkUnknownAccount(input.Password)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load account: %w", err)
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password")
		return AuthResult{}, ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)
	return authResultFor(acct), nil
}

var (
	dummyOnce    sync.Once
	dummyAccount account.Account
)

// checkUnknownAccount spends one bcrypt comparison on the unknown-email path
// so it costs the same as a wrong password.
var checkUnknownAccount = func(plaintext string) {
	dummyOnce.Do(func() {
		if err := dummyAccount.SetPassword("clubhouse-unknown-account"); err != nil {
			slog.Error("internal_error", "op", "dummy_password_hash", "error", err.Error())
		}
	})
	_ = dummyAccount.CheckPassword(plaintext)
}

func authResultFor(a account.Account) AuthResult {
	return AuthResult{
		AccountID: a.ID,
		Name:      strings.TrimSpace(a.Name),
		Email:     a.Email,
		Role:      a.Role,
	}
}
