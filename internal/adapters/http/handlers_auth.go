package web

import (
	"errors"
	"net/http"
	"strconv"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/domain/account"
	"clubhouse/internal/domain/audit"
)

type loginPage struct {
	Email string
	Error string
}

type registerPage struct {
	Name   string
	Email  string
	Errors map[string]string
}

// registerFieldErrors maps registration failures onto the form field they concern.
var registerFieldErrors = []struct {
	err   error
	field string
}{
	{account.ErrEmptyName, "name"},
	{account.ErrNameTooLong, "name"},
	{account.ErrEmptyEmail, "email"},
	{account.ErrEmailTooLong, "email"},
	{account.ErrInvalidEmail, "email"},
	{orchestrators.ErrEmailAlreadyExists, "email"},
	{account.ErrEmptyPassword, "password"},
	{account.ErrPasswordTooLong, "password"},
}

// handleRegisterForm handles GET /register
func (s *server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "register.html", registerPage{})
}

// handleRegister handles POST /register
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.RegisterInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	result, err := orchestrators.ExecuteRegister(r.Context(), input, orchestrators.RegisterDeps{
		AccountStore: s.stores.AccountStore,
	})
	if err != nil {
		for _, fe := range registerFieldErrors {
			if errors.Is(err, fe.err) {
				renderTemplate(w, r, http.StatusUnprocessableEntity, "register.html", registerPage{
					Name:   input.Name,
					Email:  input.Email,
					Errors: map[string]string{fe.field: err.Error()},
				})
				return
			}
		}
		internalError(w, err)
		return
	}

	if err := s.startSession(w, r, result); err != nil {
		internalError(w, err)
		return
	}
	s.recordAudit(r, actor{result.AccountID, result.Email}, audit.CategoryAccount, audit.ActionRegister, "user", strconv.FormatInt(result.AccountID, 10), "")
	redirect(w, r, "/clubs")
}

// handleLoginForm handles GET /login
func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		redirect(w, r, "/clubs")
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", loginPage{})
}

// handleLogin handles POST /login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: s.stores.AccountStore,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		renderTemplate(w, r, http.StatusUnauthorized, "login.html", loginPage{
			Email: input.Email,
			Error: err.Error(),
		})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if err := s.startSession(w, r, result); err != nil {
		internalError(w, err)
		return
	}
	s.recordAudit(r, actor{result.AccountID, result.Email}, audit.CategoryAccount, audit.ActionLogin, "user", strconv.FormatInt(result.AccountID, 10), "")
	redirect(w, r, "/clubs")
}

// handleLogout handles POST /logout
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := s.cookie.Token(r); ok {
		if err := s.sessions.Delete(r.Context(), token); err != nil {
			internalError(w, err)
			return
		}
	}
	s.cookie.Clear(w)
	s.recordAudit(r, sessionActor(r), audit.CategoryAccount, audit.ActionLogout, "", "", "")
	redirect(w, r, "/login")
}
