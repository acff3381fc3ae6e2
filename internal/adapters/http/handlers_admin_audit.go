package web

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	auditStore "clubhouse/internal/adapters/storage/audit"
	"clubhouse/internal/domain/audit"
)

// actor identifies who performed an audited action.
type actor struct {
	ID    int64
	Email string
}

// recordAudit appends to the audit trail. Failures are logged and never
// fail the request that triggered them.
func (s *server) recordAudit(r *http.Request, who actor, category audit.Category, action audit.Action, resourceType, resourceID, desc string) {
	if s.stores.AuditStore == nil {
		return
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	e := audit.NewEvent(who.ID, who.Email, category, action).
		WithResource(resourceType, resourceID).
		WithDescription(desc).
		WithIP(ip)
	if err := s.stores.AuditStore.Save(r.Context(), e); err != nil {
		slog.Error("audit_write_failed", "category", category, "action", action, "error", err.Error())
	}
}

func sessionActor(r *http.Request) actor {
	sess := currentSession(r)
	return actor{ID: sess.UserID, Email: sess.Email}
}

// handleAdminAudit handles GET /admin/audit?category=&action=&actor_id=&limit=N
func (s *server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if s.stores.AuditStore == nil {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	var filter auditStore.Filter
	if v := q.Get("category"); v != "" {
		c := audit.Category(v)
		filter.Category = &c
	}
	if v := q.Get("action"); v != "" {
		a := audit.Action(v)
		filter.Action = &a
	}
	if v := q.Get("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "actor_id must be an integer", http.StatusBadRequest)
			return
		}
		filter.ActorID = &id
	}
	limit := 100
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 500 {
		limit = n
	}

	events, err := s.stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
