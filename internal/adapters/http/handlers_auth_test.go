package web

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid registration",
			form:       url.Values{"name": {"Stud"}, "email": {"stud@x.edu"}, "password": {"pw2"}},
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "duplicate email",
			form:       url.Values{"name": {"Admin Again"}, "email": {"ADMIN@x.edu"}, "password": {"pw2"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "an account with this email already exists",
		},
		{
			name:       "missing name",
			form:       url.Values{"email": {"nameless@x.edu"}, "password": {"pw2"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing password",
			form:       url.Values{"name": {"No Pass"}, "email": {"nopass@x.edu"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			c := app.newClient()
			resp := c.post("/register", tt.form)
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.Code, tt.wantStatus, resp.Body)
			}
			if tt.wantBody != "" && !strings.Contains(resp.Body, tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
		})
	}
}

func TestRegister_StartsStudentSession(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	c.register("Stud", "stud@x.edu", "pw2")

	if n := app.count("SELECT COUNT(*) FROM users WHERE email = ? AND role = 'student'", "stud@x.edu"); n != 1 {
		t.Fatalf("student rows = %d, want 1", n)
	}
	resp := c.get("/clubs")
	if !strings.Contains(resp.Body, "Stud (student)") {
		t.Errorf("layout does not show the signed-in student")
	}
	if strings.Contains(resp.Body, `href="/clubs/new"`) {
		t.Errorf("student sees the new club link")
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"correct credentials", "admin@x.edu", "pw1", http.StatusSeeOther},
		{"email is case-insensitive", "Admin@X.edu", "pw1", http.StatusSeeOther},
		{"wrong password", "admin@x.edu", "nope", http.StatusUnauthorized},
		{"unknown email", "ghost@x.edu", "pw1", http.StatusUnauthorized},
	}
	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := app.newClient()
			resp := c.post("/login", url.Values{"email": {tt.email}, "password": {tt.password}})
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.Contains(resp.Body, "invalid email or password") {
				t.Errorf("401 page does not explain the failure")
			}
		})
	}
}

func TestLoginForm_RedirectsWhenSignedIn(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	c.login("admin@x.edu", "pw1")

	resp := c.get("/login")
	if resp.Code != http.StatusSeeOther || resp.Location != "/clubs" {
		t.Errorf("GET /login = %d %q, want redirect to /clubs", resp.Code, resp.Location)
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	c.login("admin@x.edu", "pw1")

	resp := c.post("/logout", nil)
	if resp.Code != http.StatusSeeOther || resp.Location != "/login" {
		t.Fatalf("logout = %d %q, want redirect to /login", resp.Code, resp.Location)
	}
	resp = c.get("/clubs/new")
	if resp.Code != http.StatusSeeOther || resp.Location != "/login" {
		t.Errorf("after logout GET /clubs/new = %d %q, want redirect to /login", resp.Code, resp.Location)
	}
}

func TestLogout_RequiresSession(t *testing.T) {
	app := newTestApp(t)
	resp := app.newClient().post("/logout", nil)
	if resp.Code != http.StatusSeeOther || resp.Location != "/login" {
		t.Errorf("anonymous logout = %d %q, want redirect to /login", resp.Code, resp.Location)
	}
}

func TestLogin_RevokesPreviousSession(t *testing.T) {
	app := newTestApp(t)
	shared := app.newClient()
	shared.login("admin@x.edu", "pw1")

	base, err := url.Parse(app.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	adminCookies := shared.hc.Jar.Cookies(base)
	if len(adminCookies) == 0 {
		t.Fatal("no session cookie after login")
	}

	// The next person on the same browser registers without logging out first.
	shared.register("Stud", "stud@x.edu", "pw2")

	replay := app.newClient()
	replay.hc.Jar.SetCookies(base, adminCookies)
	resp := replay.get("/clubs/new")
	if resp.Code != http.StatusSeeOther || resp.Location != "/login" {
		t.Errorf("replayed admin cookie GET /clubs/new = %d %q, want redirect to /login", resp.Code, resp.Location)
	}
}
