package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/securecookie"

	domainAccount "clubhouse/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL is the fixed lifetime of a session, measured from creation.
const SessionTTL = 24 * time.Hour

// Session is a snapshot of the user taken at login or registration.
// INVARIANT: never refreshed from the database while the session lives
type Session struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the session belongs to an administrator.
// INVARIANT: Session fields are not mutated
func (s Session) IsAdmin() bool {
	return s.Role == domainAccount.RoleAdmin
}

func (s Session) expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > SessionTTL
}

// SessionStore persists sessions by opaque token.
type SessionStore interface {
	Create(ctx context.Context, s Session) (string, error)
	Get(ctx context.Context, token string) (Session, bool)
	Delete(ctx context.Context, token string) error
}

// sessionSweepInterval bounds how often MemorySessionStore scans for expired sessions.
const sessionSweepInterval = time.Minute

// MemorySessionStore is an in-process session store. Create and Get sweep
// expired sessions at most once per sessionSweepInterval.
type MemorySessionStore struct {
	mu        sync.Mutex
	sessions  map[string]Session
	lastSweep time.Time
	now       func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session), now: time.Now}
}

// sweepLocked drops every expired session at most once per sessionSweepInterval.
// PRE: ms.mu is held
func (ms *MemorySessionStore) sweepLocked(now time.Time) {
	if now.Sub(ms.lastSweep) < sessionSweepInterval {
		return
	}
	for token, s := range ms.sessions {
		if s.expired(now) {
			delete(ms.sessions, token)
		}
	}
	ms.lastSweep = now
}

// Create stores s under a fresh token. A zero CreatedAt is set to now.
// PRE: s.UserID > 0
// POST: Session is stored, token is returned
func (ms *MemorySessionStore) Create(_ context.Context, s Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := ms.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	ms.sweepLocked(now)
	ms.sessions[token] = s
	return token, nil
}

// Get returns the session for token. Expired sessions are purged here.
// PRE: none
// POST: Returns the session if present and younger than SessionTTL
func (ms *MemorySessionStore) Get(_ context.Context, token string) (Session, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := ms.now()
	ms.sweepLocked(now)
	s, ok := ms.sessions[token]
	if !ok {
		return Session{}, false
	}
	if s.expired(now) {
		delete(ms.sessions, token)
		return Session{}, false
	}
	return s, true
}

// Delete removes the session for token. Unknown tokens are ignored.
func (ms *MemorySessionStore) Delete(_ context.Context, token string) error {
	ms.mu.Lock()
	delete(ms.sessions, token)
	ms.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (ms *MemorySessionStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.sessions)
}

const sessionCookieName = "clubhouse_session"

// SessionCookie signs and verifies the session token cookie.
type SessionCookie struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSessionCookie creates a cookie codec signing with hashKey.
// PRE: len(hashKey) >= 32
// POST: Cookies older than SessionTTL fail verification
func NewSessionCookie(hashKey []byte, secure bool) *SessionCookie {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(SessionTTL.Seconds()))
	return &SessionCookie{codec: codec, secure: secure}
}

// Set writes the signed token cookie.
func (c *SessionCookie) Set(w http.ResponseWriter, token string) error {
	encoded, err := c.codec.Encode(sessionCookieName, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
	})
	return nil
}

// Clear expires the cookie in the browser.
func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// Token returns the verified token from r. Missing or tampered cookies yield false.
func (c *SessionCookie) Token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var token string
	if err := c.codec.Decode(sessionCookieName, cookie.Value, &token); err != nil {
		slog.Debug("session_cookie_rejected", "error", err.Error())
		return "", false
	}
	return token, token != ""
}

// Auth returns middleware that resolves the session cookie and puts the
// session in the request context.
// It does NOT block anonymous requests; use RequireAuth or RequireAdmin for that.
func Auth(sessions SessionStore, cookie *SessionCookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := cookie.Token(r); ok {
				if s, ok := sessions.Get(r.Context(), token); ok {
					r = r.WithContext(ContextWithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, s Session, reason, target string) {
	slog.Info("auth_denied",
		"path", r.URL.Path,
		"method", r.Method,
		"user_id", s.UserID,
		"reason", reason,
	)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RequireAuth redirects anonymous requests to /login.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			deny(w, r, Session{}, "anonymous", "/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin redirects anonymous requests to /login and non-admins to /clubs.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSessionFromContext(r.Context())
		if !ok {
			deny(w, r, Session{}, "anonymous", "/login")
			return
		}
		if !s.IsAdmin() {
			deny(w, r, s, "not_admin", "/clubs")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClubRoleChecker resolves a user's membership role in a club.
// An empty role with a nil error means the user is not a member.
type ClubRoleChecker interface {
	ClubRole(ctx context.Context, userID, clubID int64) (string, error)
}

// RequireClubRole allows the request only when the session user holds one of
// roles in the club named by the route's {id} segment.
// Anonymous → /login; malformed id → /clubs; any other denial → /clubs/{id}.
func RequireClubRole(checker ClubRoleChecker, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSessionFromContext(r.Context())
			if !ok {
				deny(w, r, Session{}, "anonymous", "/login")
				return
			}
			clubID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
			if err != nil || clubID <= 0 {
				deny(w, r, s, "bad_club_id", "/clubs")
				return
			}
			clubURL := "/clubs/" + strconv.FormatInt(clubID, 10)
			role, err := checker.ClubRole(r.Context(), s.UserID, clubID)
			if err != nil {
				slog.Error("internal_error", "op", "club_role_check", "club_id", clubID, "error", err.Error())
				deny(w, r, s, "role_lookup_failed", clubURL)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, r, s, "missing_club_role", clubURL)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// IsAdmin checks if the current session is an admin.
func IsAdmin(ctx context.Context) bool {
	s, ok := GetSessionFromContext(ctx)
	return ok && s.IsAdmin()
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
