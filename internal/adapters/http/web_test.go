package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"clubhouse/internal/adapters/http/perf"
	"clubhouse/internal/adapters/storage"
	accountStore "clubhouse/internal/adapters/storage/account"
	auditStore "clubhouse/internal/adapters/storage/audit"
	clubStore "clubhouse/internal/adapters/storage/club"
	eventStore "clubhouse/internal/adapters/storage/event"
	membershipStore "clubhouse/internal/adapters/storage/membership"
	outboxStore "clubhouse/internal/adapters/storage/outbox"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/domain/account"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

var testHashKey = []byte("0123456789abcdef0123456789abcdef")

// testApp is a full handler stack over a temp-file SQLite database.
type testApp struct {
	t         *testing.T
	db        *sql.DB
	stores    *Stores
	collector *perf.Collector
	server    *httptest.Server
}

type appOption func(*Options)

func withCSRF(o *Options) {
	o.SkipCSRF = false
	o.CSRFKey = []byte("abcdefghijklmnopqrstuvwxyz012345")
}

// newTestApp opens a fresh database seeded with admin@x.edu / pw1.
func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "clubs.db"), 4)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	collector := perf.NewCollector(1000)
	timed := storage.NewTimedDB(db, collector, 0)
	stores := &Stores{
		AccountStore:    accountStore.NewSQLiteStore(timed),
		ClubStore:       clubStore.NewSQLiteStore(timed),
		MembershipStore: membershipStore.NewSQLiteStore(timed),
		EventStore:      eventStore.NewSQLiteStore(timed),
		OutboxStore:     outboxStore.NewSQLiteStore(timed),
		AuditStore:      auditStore.NewSQLiteStore(timed),
	}
	err = orchestrators.ExecuteSeed(context.Background(), orchestrators.SeedDeps{
		AccountStore:    stores.AccountStore,
		ClubStore:       stores.ClubStore,
		MembershipStore: stores.MembershipStore,
		EventStore:      stores.EventStore,
	}, orchestrators.SeedConfig{AdminEmail: "admin@x.edu", AdminPassword: "pw1", AdminOnly: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	o := Options{
		SessionHashKey:     testHashKey,
		SkipCSRF:           true,
		RateLimitPerSecond: 10000,
		Collector:          collector,
		DB:                 timed,
		Outbox:             orchestrators.NewOutboxProcessor(stores.OutboxStore, nil),
	}
	for _, apply := range opts {
		apply(&o)
	}

	srv := httptest.NewServer(NewMux(stores, o))
	t.Cleanup(srv.Close)
	return &testApp{t: t, db: db, stores: stores, collector: collector, server: srv}
}

// client is a browser-like user agent with its own cookie jar that does not
// follow redirects, so tests can assert on them.
type client struct {
	app *testApp
	hc  *http.Client
}

func (a *testApp) newClient() *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		a.t.Fatal(err)
	}
	return &client{app: a, hc: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type response struct {
	Code     int
	Location string
	Body     string
	Header   http.Header
}

func (c *client) do(req *http.Request) response {
	c.app.t.Helper()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.app.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return response{
		Code:     resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(body),
		Header:   resp.Header,
	}
}

func (c *client) get(path string) response {
	c.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.app.server.URL+path, nil)
	if err != nil {
		c.app.t.Fatal(err)
	}
	return c.do(req)
}

func (c *client) post(path string, form url.Values) response {
	c.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.app.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		c.app.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// login signs in and fails the test unless the app redirects to /clubs.
func (c *client) login(email, password string) {
	c.app.t.Helper()
	resp := c.post("/login", url.Values{"email": {email}, "password": {password}})
	if resp.Code != http.StatusSeeOther || resp.Location != "/clubs" {
		c.app.t.Fatalf("login %s: status %d location %q", email, resp.Code, resp.Location)
	}
}

// register creates a student account and keeps the resulting session.
func (c *client) register(name, email, password string) {
	c.app.t.Helper()
	resp := c.post("/register", url.Values{"name": {name}, "email": {email}, "password": {password}})
	if resp.Code != http.StatusSeeOther || resp.Location != "/clubs" {
		c.app.t.Fatalf("register %s: status %d location %q body %s", email, resp.Code, resp.Location, resp.Body)
	}
}

func (a *testApp) count(query string, args ...any) int {
	a.t.Helper()
	var n int
	if err := a.db.QueryRow(query, args...).Scan(&n); err != nil {
		a.t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func (a *testApp) clubID(name string) int64 {
	a.t.Helper()
	var id int64
	if err := a.db.QueryRow("SELECT club_id FROM clubs WHERE name = ?", name).Scan(&id); err != nil {
		a.t.Fatalf("club %q: %v", name, err)
	}
	return id
}

func (a *testApp) userID(email string) int64 {
	a.t.Helper()
	var id int64
	if err := a.db.QueryRow("SELECT user_id FROM users WHERE email = ?", email).Scan(&id); err != nil {
		a.t.Fatalf("user %q: %v", email, err)
	}
	return id
}

// makeCoordinator inserts a coordinator membership directly.
func (a *testApp) makeCoordinator(userID, clubID int64) {
	a.t.Helper()
	if _, err := a.db.Exec("INSERT INTO memberships (user_id, club_id, role) VALUES (?, ?, 'coordinator')", userID, clubID); err != nil {
		a.t.Fatal(err)
	}
}
