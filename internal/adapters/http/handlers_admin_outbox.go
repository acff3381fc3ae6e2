package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/domain/outbox"
)

// outboxEntryView is the JSON shape of an outbox entry on the admin endpoints.
// The payload is omitted because it carries member email addresses.
type outboxEntryView struct {
	ID              string    `json:"id"`
	ActionType      string    `json:"action_type"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	MaxAttempts     int       `json:"max_attempts"`
	LastAttemptedAt time.Time `json:"last_attempted_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
	ExternalID      string    `json:"external_id,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

func toOutboxView(e outbox.Entry) outboxEntryView {
	return outboxEntryView{
		ID:              e.ID,
		ActionType:      e.ActionType,
		Status:          e.Status,
		Attempts:        e.Attempts,
		MaxAttempts:     e.MaxAttempts,
		LastAttemptedAt: e.LastAttemptedAt,
		CreatedAt:       e.CreatedAt,
		ExternalID:      e.ExternalID,
		ErrorMessage:    e.ErrorMessage,
	}
}

// handleAdminOutbox handles GET /admin/outbox?limit=N, listing entries that
// are still waiting for delivery.
func (s *server) handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if s.stores.OutboxStore == nil {
		http.NotFound(w, r)
		return
	}
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	entries, err := s.stores.OutboxStore.ListPending(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}
	views := make([]outboxEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toOutboxView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAdminOutboxRetry handles POST /admin/outbox/{entryID}/retry, attempting
// delivery immediately regardless of backoff.
func (s *server) handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if s.stores.OutboxStore == nil || s.outbox == nil {
		http.NotFound(w, r)
		return
	}
	entryID := r.PathValue("entryID")
	if err := s.outbox.ProcessSingle(r.Context(), entryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "outbox entry not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	entry, err := s.stores.OutboxStore.GetByID(r.Context(), entryID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxView(entry))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
