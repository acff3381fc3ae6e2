package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"clubhouse/internal/adapters/email"
	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/account"
	"clubhouse/internal/domain/club"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/membership"
	"clubhouse/internal/domain/outbox"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[int64]account.Account
	nextID   int64
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: map[int64]account.Account{}}
}

// GetByEmail retrieves a mock account by email.
// PRE: email is non-empty
// POST: Returns the account or storage.ErrNotFound
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == account.NormalizeEmail(email) {
			return a, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

// Create stores a mock account, enforcing unique emails.
// PRE: a has been validated
// POST: Account stored under a fresh ID
func (m *mockAccountStore) Create(_ context.Context, a account.Account) (int64, error) {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return 0, fmt.Errorf("%w: email", storage.ErrConflict)
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.accounts[a.ID] = a
	return a.ID, nil
}

// Count returns the number of mock accounts.
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// --- Mock club store ---

type mockClubStore struct {
	clubs  map[int64]club.Club
	nextID int64
}

func newMockClubStore() *mockClubStore {
	return &mockClubStore{clubs: map[int64]club.Club{}}
}

func (m *mockClubStore) nameTaken(name string, except int64) bool {
	for id, c := range m.clubs {
		if c.Name == name && id != except {
			return true
		}
	}
	return false
}

// Create stores a mock club, enforcing unique names.
func (m *mockClubStore) Create(_ context.Context, c club.Club) (int64, error) {
	if m.nameTaken(c.Name, 0) {
		return 0, storage.ErrConflict
	}
	m.nextID++
	c.ID = m.nextID
	m.clubs[c.ID] = c
	return c.ID, nil
}

// Update rewrites a mock club.
func (m *mockClubStore) Update(_ context.Context, c club.Club) error {
	existing, ok := m.clubs[c.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if m.nameTaken(c.Name, c.ID) {
		return storage.ErrConflict
	}
	existing.Name, existing.Description = c.Name, c.Description
	m.clubs[c.ID] = existing
	return nil
}

// Delete removes a mock club.
func (m *mockClubStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.clubs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.clubs, id)
	return nil
}

// GetByID retrieves a mock club.
func (m *mockClubStore) GetByID(_ context.Context, id int64) (club.Club, error) {
	c, ok := m.clubs[id]
	if !ok {
		return club.Club{}, storage.ErrNotFound
	}
	return c, nil
}

// --- Mock membership store ---

type mockMembershipStore struct {
	clubs    *mockClubStore // optional: when set, Join rejects unknown clubs
	accounts *mockAccountStore
	rows     []membership.Membership
	listErr  error
}

func (m *mockMembershipStore) find(userID, clubID int64) int {
	for i, r := range m.rows {
		if r.UserID == userID && r.ClubID == clubID {
			return i
		}
	}
	return -1
}

// Join adds a member row unless one exists.
func (m *mockMembershipStore) Join(_ context.Context, userID, clubID int64) (bool, error) {
	if m.clubs != nil {
		if _, ok := m.clubs.clubs[clubID]; !ok {
			return false, storage.ErrNotFound
		}
	}
	if m.find(userID, clubID) >= 0 {
		return false, nil
	}
	m.rows = append(m.rows, membership.Membership{ID: int64(len(m.rows) + 1), UserID: userID, ClubID: clubID, Role: membership.RoleMember})
	return true, nil
}

// Add upserts a row with an explicit role.
func (m *mockMembershipStore) Add(_ context.Context, v membership.Membership) error {
	if i := m.find(v.UserID, v.ClubID); i >= 0 {
		m.rows[i].Role = v.Role
		return nil
	}
	v.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, v)
	return nil
}

// Leave removes a row if present.
func (m *mockMembershipStore) Leave(_ context.Context, userID, clubID int64) error {
	if i := m.find(userID, clubID); i >= 0 {
		m.rows = append(m.rows[:i], m.rows[i+1:]...)
	}
	return nil
}

// ListMembers joins rows with the mock account store.
func (m *mockMembershipStore) ListMembers(_ context.Context, clubID int64) ([]membership.Member, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []membership.Member
	for _, r := range m.rows {
		if r.ClubID != clubID {
			continue
		}
		mem := membership.Member{UserID: r.UserID, Role: r.Role}
		if m.accounts != nil {
			a := m.accounts.accounts[r.UserID]
			mem.Name, mem.Email = a.Name, a.Email
		}
		out = append(out, mem)
	}
	return out, nil
}

// --- Mock event store ---

type mockEventStore struct {
	events []event.Event
	err    error
}

// Create stores a mock event.
func (m *mockEventStore) Create(_ context.Context, e event.Event) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, e)
	return e.ID, nil
}

// --- Mock outbox store ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	saveErr error
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: map[string]outbox.Entry{}}
}

// GetByID retrieves a mock entry.
func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, storage.ErrNotFound
	}
	return e, nil
}

// Save upserts a mock entry.
func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[e.ID] = e
	return nil
}

// ListPending returns pending and retrying entries ordered by creation.
func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockOutboxStore) all() []outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}

// --- Mock email sender ---

type mockSender struct {
	sent []email.Message
	keys []string
	err  error
}

// Send records one message.
func (m *mockSender) Send(ctx context.Context, msg email.Message) (email.Receipt, error) {
	r, err := m.SendBatch(ctx, "", []email.Message{msg})
	if err != nil {
		return email.Receipt{}, err
	}
	return r[0], nil
}

// SendBatch records messages or fails with m.err.
func (m *mockSender) SendBatch(_ context.Context, key string, msgs []email.Message) ([]email.Receipt, error) {
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, m.err
	}
	var out []email.Receipt
	for _, msg := range msgs {
		m.sent = append(m.sent, msg)
		out = append(out, email.Receipt{MessageID: fmt.Sprintf("msg-%d", len(m.sent))})
	}
	return out, nil
}

// --- Mock executor ---

type mockExecutor struct {
	calls int
	err   error
}

// Execute counts calls and fails with m.err.
func (m *mockExecutor) Execute(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "ext-1", nil
}

var errBoom = errors.New("boom")
