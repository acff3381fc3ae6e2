package web

import (
	"context"
	"net/http"
	"time"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/adapters/http/perf"
	accountStore "clubhouse/internal/adapters/storage/account"
	auditStore "clubhouse/internal/adapters/storage/audit"
	clubStore "clubhouse/internal/adapters/storage/club"
	eventStore "clubhouse/internal/adapters/storage/event"
	membershipStore "clubhouse/internal/adapters/storage/membership"
	outboxStore "clubhouse/internal/adapters/storage/outbox"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
	"clubhouse/internal/domain/membership"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	ClubStore       clubStore.Store
	MembershipStore membershipStore.Store
	EventStore      eventStore.Store
	// OutboxStore is optional; nil disables event announcements and the
	// admin outbox endpoints.
	OutboxStore outboxStore.Store
	// AuditStore is optional; nil disables the audit trail.
	AuditStore auditStore.Store
}

// Pinger reports database health for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the middleware chain around the routes.
type Options struct {
	Sessions       middleware.SessionStore
	SessionHashKey []byte
	CSRFKey        []byte
	// SkipCSRF disables gorilla/csrf; only tests set it.
	SkipCSRF       bool
	SecureCookies  bool
	TrustedOrigins []string

	RateLimitPerSecond float64
	RateLimitBurst     int
	MaxInFlight        int
	AdmissionWait      time.Duration
	SlowRequest        time.Duration

	Collector *perf.Collector
	DB        Pinger
	// Outbox retries announcements from the admin endpoints; nil disables them.
	Outbox *orchestrators.OutboxProcessor
}

func (o *Options) setDefaults() {
	if o.Sessions == nil {
		o.Sessions = middleware.NewMemorySessionStore()
	}
	if o.RateLimitPerSecond <= 0 {
		o.RateLimitPerSecond = 10
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = int(o.RateLimitPerSecond*2) + 1
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = 64
	}
	if o.AdmissionWait <= 0 {
		o.AdmissionWait = 2 * time.Second
	}
}

// server carries the dependencies shared by every handler.
type server struct {
	stores    *Stores
	sessions  middleware.SessionStore
	cookie    *middleware.SessionCookie
	collector *perf.Collector
	db        Pinger
	outbox    *orchestrators.OutboxProcessor
	started   time.Time
}

// membershipRoles adapts the membership store to middleware.ClubRoleChecker.
type membershipRoles struct {
	store membershipStore.Store
}

func (m membershipRoles) ClubRole(ctx context.Context, userID, clubID int64) (string, error) {
	return projections.QueryClubRole(ctx, userID, clubID, m.store)
}

// NewMux wires HTTP handlers and the middleware chain for the app.
// PRE: s has every store except OutboxStore set; opts.SessionHashKey is 32+ bytes;
// opts.CSRFKey is 32 bytes unless SkipCSRF
// POST: Returns a handler serving every route
func NewMux(s *Stores, opts Options) http.Handler {
	opts.setDefaults()
	srv := &server{
		stores:    s,
		sessions:  opts.Sessions,
		cookie:    middleware.NewSessionCookie(opts.SessionHashKey, opts.SecureCookies),
		collector: opts.Collector,
		db:        opts.DB,
		outbox:    opts.Outbox,
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	chain := []func(http.Handler) http.Handler{middleware.MethodOverride}
	if !opts.SkipCSRF {
		chain = append(chain, middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins...))
	}
	chain = append(chain,
		middleware.Auth(srv.sessions, srv.cookie),
		middleware.SecurityHeaders,
		middleware.RateLimit(middleware.NewRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst)),
		middleware.Admission(opts.MaxInFlight, opts.AdmissionWait),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	)
	// Request flow: Timing -> Admission -> RateLimit -> SecurityHeaders -> Auth -> CSRF -> MethodOverride -> mux
	return middleware.Chain(middleware.CapturePattern(mux), chain...)
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	static := http.FileServerFS(staticFS)
	mux.Handle("GET /static/", static)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		redirect(w, r, "/clubs")
	})
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Authentication
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.Handle("POST /logout", middleware.RequireAuth(http.HandlerFunc(s.handleLogout)))

	// Clubs
	admin := middleware.RequireAdmin
	auth := middleware.RequireAuth
	coordinator := middleware.RequireClubRole(membershipRoles{store: s.stores.MembershipStore}, membership.RoleCoordinator)

	mux.HandleFunc("GET /clubs", s.handleListClubs)
	mux.Handle("GET /clubs/new", admin(http.HandlerFunc(s.handleNewClubForm)))
	mux.Handle("POST /clubs", admin(http.HandlerFunc(s.handleCreateClub)))
	mux.Handle("GET /clubs/{id}/edit", admin(http.HandlerFunc(s.handleEditClubForm)))
	mux.Handle("PUT /clubs/{id}", admin(http.HandlerFunc(s.handleUpdateClub)))
	mux.Handle("DELETE /clubs/{id}", admin(http.HandlerFunc(s.handleDeleteClub)))
	mux.Handle("GET /clubs/{id}", auth(http.HandlerFunc(s.handleShowClub)))
	mux.Handle("POST /clubs/{id}/join", auth(http.HandlerFunc(s.handleJoinClub)))
	mux.Handle("DELETE /clubs/{id}/leave", auth(http.HandlerFunc(s.handleLeaveClub)))

	// Events
	mux.Handle("GET /clubs/{id}/events/new", coordinator(http.HandlerFunc(s.handleNewEventForm)))
	mux.Handle("POST /clubs/{id}/events", coordinator(http.HandlerFunc(s.handleCreateEvent)))

	// Admin
	mux.Handle("GET /admin/stats", admin(http.HandlerFunc(s.handleAdminStats)))
	mux.Handle("GET /admin/audit", admin(http.HandlerFunc(s.handleAdminAudit)))
	mux.Handle("GET /admin/outbox", admin(http.HandlerFunc(s.handleAdminOutbox)))
	mux.Handle("POST /admin/outbox/{entryID}/retry", admin(http.HandlerFunc(s.handleAdminOutboxRetry)))
}
