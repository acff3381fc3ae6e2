package web

import (
	"errors"
	"net/http"

	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
	"clubhouse/internal/domain/club"
	"clubhouse/internal/domain/event"
)

type eventFormPage struct {
	Club        club.Club
	Title       string
	Description string
	Date        string
	Errors      map[string]string
}

// eventFieldErrors maps event validation failures onto form fields.
var eventFieldErrors = []struct {
	err   error
	field string
}{
	{event.ErrEmptyTitle, "title"},
	{event.ErrTitleTooLong, "title"},
	{event.ErrDescriptionTooLong, "description"},
	{event.ErrMissingDate, "event_date"},
	{event.ErrInvalidDate, "event_date"},
}

// handleNewEventForm handles GET /clubs/{id}/events/new (coordinators only)
func (s *server) handleNewEventForm(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	c, err := projections.QueryGetClub(r.Context(), id, projections.GetClubDeps{ClubStore: s.stores.ClubStore})
	if errors.Is(err, club.ErrNotFound) {
		redirect(w, r, "/clubs")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "event_new.html", eventFormPage{Club: c})
}

// handleCreateEvent handles POST /clubs/{id}/events (coordinators only)
func (s *server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.CreateEventInput{
		ClubID:      id,
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Date:        r.PostFormValue("event_date"),
	}

	deps := orchestrators.CreateEventDeps{
		EventStore:      s.stores.EventStore,
		ClubStore:       s.stores.ClubStore,
		MembershipStore: s.stores.MembershipStore,
	}
	if s.stores.OutboxStore != nil {
		deps.OutboxStore = s.stores.OutboxStore
	}

	_, err := orchestrators.ExecuteCreateEvent(r.Context(), input, deps)
	if errors.Is(err, club.ErrNotFound) {
		redirect(w, r, "/clubs")
		return
	}
	if err != nil {
		for _, fe := range eventFieldErrors {
			if errors.Is(err, fe.err) {
				s.renderEventFormError(w, r, input, map[string]string{fe.field: err.Error()})
				return
			}
		}
		internalError(w, err)
		return
	}
	redirect(w, r, clubURL(id))
}

func (s *server) renderEventFormError(w http.ResponseWriter, r *http.Request, input orchestrators.CreateEventInput, fields map[string]string) {
	c, err := projections.QueryGetClub(r.Context(), input.ClubID, projections.GetClubDeps{ClubStore: s.stores.ClubStore})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, http.StatusUnprocessableEntity, "event_new.html", eventFormPage{
		Club:        c,
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		Errors:      fields,
	})
}
