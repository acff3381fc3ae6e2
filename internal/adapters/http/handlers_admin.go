package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"clubhouse/internal/adapters/http/perf"
)

// statsResponse is served on GET /admin/stats.
type statsResponse struct {
	WindowMinutes int            `json:"window_minutes"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Perf          *perf.Summary  `json:"perf,omitempty"`
	Outbox        map[string]int `json:"outbox,omitempty"`
}

// handleAdminStats handles GET /admin/stats?minutes=N&top=N
func (s *server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minutes := 60
	if n, err := strconv.Atoi(q.Get("minutes")); err == nil && n > 0 && n <= 24*60 {
		minutes = n
	}
	top := 10
	if n, err := strconv.Atoi(q.Get("top")); err == nil && n > 0 && n <= 50 {
		top = n
	}

	resp := statsResponse{
		WindowMinutes: minutes,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if s.collector != nil {
		summary := s.collector.Snapshot(time.Now().Add(-time.Duration(minutes)*time.Minute), top)
		resp.Perf = &summary
	}
	if s.stores.OutboxStore != nil {
		counts, err := s.stores.OutboxStore.CountByStatus(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		resp.Outbox = counts
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealthz handles GET /healthz
func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			slog.Error("healthz_failed", "error", err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
