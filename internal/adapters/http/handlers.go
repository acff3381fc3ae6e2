package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/application/orchestrators"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var templateFuncs = template.FuncMap{
	"renderMarkdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"formatDate": func(t time.Time) string {
		return t.Format("Mon, Jan 2 2006")
	},
	"isoDate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
}

// pages maps a page file name to its template set (layout + page).
var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, path := range names {
		name := path[len("templates/"):]
		if name == "layout.html" {
			continue
		}
		out[name] = template.Must(template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", path))
	}
	return out
}

// view is the data every page template receives.
type view struct {
	User      *middleware.Session
	CSRFField template.HTML
	Page      any
}

// renderTemplate renders a page inside the layout with the given status.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, page any) {
	tpl, ok := pages[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", name))
		return
	}
	v := view{CSRFField: csrf.TemplateField(r), Page: page}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		v.User = &sess
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// redirect sends a 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func clubURL(id int64) string {
	return "/clubs/" + strconv.FormatInt(id, 10)
}

// clubID parses the {id} path segment. Malformed ids redirect to /clubs.
func clubID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		redirect(w, r, "/clubs")
		return 0, false
	}
	return id, true
}

// currentSession returns the session placed by middleware.Auth. Routes that
// call it sit behind RequireAuth, so a missing session is a wiring bug.
func currentSession(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// startSession creates a session for the authenticated account and sets the cookie.
// POST: any session previously carried by the request's cookie is revoked
func (s *server) startSession(w http.ResponseWriter, r *http.Request, res orchestrators.AuthResult) error {
	if prev, ok := s.cookie.Token(r); ok {
		if err := s.sessions.Delete(r.Context(), prev); err != nil {
			return fmt.Errorf("revoke previous session: %w", err)
		}
	}
	token, err := s.sessions.Create(r.Context(), middleware.Session{
		UserID: res.AccountID,
		Name:   res.Name,
		Email:  res.Email,
		Role:   res.Role,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return s.cookie.Set(w, token)
}
