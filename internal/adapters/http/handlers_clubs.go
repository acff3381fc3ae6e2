package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
	"clubhouse/internal/domain/audit"
	"clubhouse/internal/domain/club"
)

type clubsIndexPage struct {
	Clubs   []club.Club
	IsAdmin bool
}

type clubFormPage struct {
	ID          int64
	Name        string
	Description string
	Errors      map[string]string
}

type clubShowPage struct {
	projections.ClubDetailResult
	IsAdmin bool
}

// clubFieldErrors maps club validation failures onto form fields.
var clubFieldErrors = []struct {
	err   error
	field string
}{
	{club.ErrEmptyName, "name"},
	{club.ErrNameTooLong, "name"},
	{orchestrators.ErrClubNameTaken, "name"},
	{club.ErrDescriptionTooLong, "description"},
}

func clubFormErrors(err error) (map[string]string, bool) {
	for _, fe := range clubFieldErrors {
		if errors.Is(err, fe.err) {
			return map[string]string{fe.field: err.Error()}, true
		}
	}
	return nil, false
}

func clubInput(r *http.Request) orchestrators.ClubInput {
	return orchestrators.ClubInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
}

// handleListClubs handles GET /clubs
func (s *server) handleListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := projections.QueryListClubs(r.Context(), projections.ListClubsDeps{
		ClubStore: s.stores.ClubStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "clubs_index.html", clubsIndexPage{
		Clubs:   clubs,
		IsAdmin: middleware.IsAdmin(r.Context()),
	})
}

// handleNewClubForm handles GET /clubs/new
func (s *server) handleNewClubForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "club_new.html", clubFormPage{})
}

// handleCreateClub handles POST /clubs
func (s *server) handleCreateClub(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := clubInput(r)
	sess := currentSession(r)

	newID, err := orchestrators.ExecuteCreateClub(r.Context(), input, sess.UserID, orchestrators.ClubDeps{
		ClubStore: s.stores.ClubStore,
	})
	if err != nil {
		if fields, ok := clubFormErrors(err); ok {
			renderTemplate(w, r, http.StatusUnprocessableEntity, "club_new.html", clubFormPage{
				Name:        input.Name,
				Description: input.Description,
				Errors:      fields,
			})
			return
		}
		internalError(w, err)
		return
	}
	s.recordAudit(r, actor{sess.UserID, sess.Email}, audit.CategoryClub, audit.ActionCreate, "club", strconv.FormatInt(newID, 10), input.Name)
	redirect(w, r, "/clubs")
}

// handleEditClubForm handles GET /clubs/{id}/edit
func (s *server) handleEditClubForm(w http.ResponseWriter, r *http.Request) {
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
	renderTemplate(w, r, http.StatusOK, "club_edit.html", clubFormPage{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	})
}

// handleUpdateClub handles PUT /clubs/{id}
func (s *server) handleUpdateClub(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := clubInput(r)

	err := orchestrators.ExecuteUpdateClub(r.Context(), id, input, orchestrators.ClubDeps{
		ClubStore: s.stores.ClubStore,
	})
	if errors.Is(err, club.ErrNotFound) {
		redirect(w, r, "/clubs")
		return
	}
	if err != nil {
		if fields, ok := clubFormErrors(err); ok {
			renderTemplate(w, r, http.StatusUnprocessableEntity, "club_edit.html", clubFormPage{
				ID:          id,
				Name:        input.Name,
				Description: input.Description,
				Errors:      fields,
			})
			return
		}
		internalError(w, err)
		return
	}
	s.recordAudit(r, sessionActor(r), audit.CategoryClub, audit.ActionUpdate, "club", strconv.FormatInt(id, 10), input.Name)
	redirect(w, r, clubURL(id))
}

// handleDeleteClub handles DELETE /clubs/{id}
func (s *server) handleDeleteClub(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	if err := orchestrators.ExecuteDeleteClub(r.Context(), id, orchestrators.ClubDeps{
		ClubStore: s.stores.ClubStore,
	}); err != nil {
		internalError(w, err)
		return
	}
	s.recordAudit(r, sessionActor(r), audit.CategoryClub, audit.ActionDelete, "club", strconv.FormatInt(id, 10), "")
	redirect(w, r, "/clubs")
}

// handleShowClub handles GET /clubs/{id}
func (s *server) handleShowClub(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	sess := currentSession(r)

	detail, err := projections.QueryClubDetail(r.Context(), projections.ClubDetailQuery{
		ClubID:   id,
		ViewerID: sess.UserID,
	}, projections.ClubDetailDeps{
		ClubStore:       s.stores.ClubStore,
		MembershipStore: s.stores.MembershipStore,
		EventStore:      s.stores.EventStore,
	})
	if errors.Is(err, club.ErrNotFound) {
		redirect(w, r, "/clubs")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "club_show.html", clubShowPage{
		ClubDetailResult: detail,
		IsAdmin:          sess.IsAdmin(),
	})
}

// handleJoinClub handles POST /clubs/{id}/join
func (s *server) handleJoinClub(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	sess := currentSession(r)

	res, err := orchestrators.ExecuteJoinClub(r.Context(), sess.UserID, id, orchestrators.MembershipDeps{
		MembershipStore: s.stores.MembershipStore,
	})
	if errors.Is(err, club.ErrNotFound) {
		redirect(w, r, "/clubs")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if res.AlreadyMember {
		slog.Debug("membership_event", "event", "join_repeated", "club_id", id, "user_id", sess.UserID)
	}
	redirect(w, r, clubURL(id))
}

// handleLeaveClub handles DELETE /clubs/{id}/leave
func (s *server) handleLeaveClub(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}
	sess := currentSession(r)

	if err := orchestrators.ExecuteLeaveClub(r.Context(), sess.UserID, id, orchestrators.MembershipDeps{
		MembershipStore: s.stores.MembershipStore,
	}); err != nil {
		internalError(w, err)
		return
	}
	redirect(w, r, clubURL(id))
}
