package orchestrators

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"clubhouse/internal/domain/account"
)

func TestExecuteRegister(t *testing.T) {
	store := newMockAccountStore()
	deps := RegisterDeps{AccountStore: store}
	ctx := context.Background()

	got, err := ExecuteRegister(ctx, RegisterInput{Name: " Stud ", Email: "Stud@X.edu", Password: "pw2"}, deps)
	if err != nil {
		t.Fatalf("ExecuteRegister: %v", err)
	}
	if got.AccountID == 0 || got.Name != "Stud" || got.Email != "stud@x.edu" || got.Role != account.RoleStudent {
		t.Errorf("result = %+v", got)
	}
	stored := store.accounts[got.AccountID]
	if stored.PasswordHash == "" || stored.PasswordHash == "pw2" {
		t.Errorf("password not hashed: %q", stored.PasswordHash)
	}
	if err := stored.CheckPassword("pw2"); err != nil {
		t.Errorf("CheckPassword: %v", err)
	}
}

func TestExecuteRegister_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore()
	deps := RegisterDeps{AccountStore: store}
	ctx := context.Background()

	if _, err := ExecuteRegister(ctx, RegisterInput{Name: "A", Email: "a@x.edu", Password: "p"}, deps); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := ExecuteRegister(ctx, RegisterInput{Name: "B", Email: "A@x.edu", Password: "q"}, deps)
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("accounts = %d, want 1", len(store.accounts))
	}
}

func TestExecuteRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"empty name", RegisterInput{Email: "a@x.edu", Password: "p"}, account.ErrEmptyName},
		{"empty email", RegisterInput{Name: "A", Password: "p"}, account.ErrEmptyEmail},
		{"bad email", RegisterInput{Name: "A", Email: "ax.edu", Password: "p"}, account.ErrInvalidEmail},
		{"empty password", RegisterInput{Name: "A", Email: "a@x.edu"}, account.ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockAccountStore()
			_, err := ExecuteRegister(context.Background(), tt.input, RegisterDeps{AccountStore: store})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(store.accounts) != 0 {
				t.Error("no account should be created")
			}
		})
	}
}

func TestExecuteLogin(t *testing.T) {
	store := newMockAccountStore()
	ctx := context.Background()
	reg, err := ExecuteRegister(ctx, RegisterInput{Name: "Stud", Email: "stud@x.edu", Password: "pw2"}, RegisterDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	deps := LoginDeps{AccountStore: store}

	tests := []struct {
		name    string
		input   LoginInput
		wantErr error
	}{
		{"success", LoginInput{Email: "stud@x.edu", Password: "pw2"}, nil},
		{"case insensitive email", LoginInput{Email: " STUD@x.edu", Password: "pw2"}, nil},
		{"wrong password", LoginInput{Email: "stud@x.edu", Password: "nope"}, ErrInvalidCredentials},
		{"unknown email", LoginInput{Email: "who@x.edu", Password: "pw2"}, ErrInvalidCredentials},
		{"empty", LoginInput{}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExecuteLogin(ctx, tt.input, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != reg {
				t.Errorf("result = %+v, want %+v", got, reg)
			}
		})
	}
}

func TestExecuteLogin_UnknownEmailComparesPassword(t *testing.T) {
	store := newMockAccountStore()
	ctx := context.Background()
	if _, err := ExecuteRegister(ctx, RegisterInput{Name: "Stud", Email: "stud@x.edu", Password: "pw2"}, RegisterDeps{AccountStore: store}); err != nil {
		t.Fatalf("register: %v", err)
	}

	original := checkUnknownAccount
	t.Cleanup(func() { checkUnknownAccount = original })
	var calls int
	checkUnknownAccount = func(plaintext string) {
		calls++
		original(plaintext)
	}

	tests := []struct {
		name      string
		input     LoginInput
		wantCalls int
	}{
		{"unknown email", LoginInput{Email: "who@x.edu", Password: "pw2"}, 1},
		{"wrong password", LoginInput{Email: "stud@x.edu", Password: "nope"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			_, err := ExecuteLogin(ctx, tt.input, LoginDeps{AccountStore: store})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("dummy comparisons = %d, want %d", calls, tt.wantCalls)
			}
		})
	}

	cost, err := bcrypt.Cost([]byte(dummyAccount.PasswordHash))
	if err != nil {
		t.Fatalf("dummy hash is not a bcrypt hash: %v", err)
	}
	if cost != account.PasswordCost {
		t.Errorf("dummy hash cost = %d, want %d", cost, account.PasswordCost)
	}
}

type failingAccountStore struct{}

func (failingAccountStore) GetByEmail(context.Context, string) (account.Account, error) {
	return account.Account{}, errBoom
}

func TestExecuteLogin_StoreFailure(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "stud@x.edu", Password: "pw2"}, LoginDeps{AccountStore: failingAccountStore{}})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want wrapped errBoom", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("store failure reported as invalid credentials")
	}
}
