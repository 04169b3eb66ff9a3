package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"altcad-web/internal/domain"
	"altcad-web/internal/session"
)

// AuthHandler handles the login and signup forms and logout.
type AuthHandler struct {
	renderer *Renderer
	sessions *session.Manager
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(renderer *Renderer, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		renderer: renderer,
		sessions: sessions,
	}
}

// authFormData carries form state back into the page on a failed submission.
// Passwords are never echoed.
type authFormData struct {
	Title    string
	Error    string
	Errors   []string
	Email    string
	Username string
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "login.html", authFormData{Title: "Log in"})
}

// SignupPage renders the signup form.
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "signup.html", authFormData{Title: "Sign up"})
}

// Login handles a login form submission. On success the session record is
// persisted and the user lands on the home timeline; on failure the form is
// re-rendered with the rejection message and the email preserved.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if _, err := h.sessions.Login(r.Context(), w, email, password); err != nil {
		data := authFormData{Title: "Log in", Email: email}
		data.Error, data.Errors = describeAuthError(err)
		h.renderer.Render(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Signup handles a signup form submission. The password confirmation is
// checked locally before any network call is made.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("password_confirmation")

	data := authFormData{Title: "Sign up", Email: email, Username: username}

	if password != confirmation {
		data.Error = "Passwords do not match"
		h.renderer.Render(w, http.StatusUnprocessableEntity, "signup.html", data)
		return
	}

	if _, err := h.sessions.Signup(r.Context(), w, username, email, password); err != nil {
		data.Error, data.Errors = describeAuthError(err)
		h.renderer.Render(w, http.StatusUnprocessableEntity, "signup.html", data)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout drops the session record and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// describeAuthError extracts the display message and any per-field detail
// lines from an authentication failure.
func describeAuthError(err error) (string, []string) {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		return "An error occurred during login", nil
	}

	var details []string
	fields := make([]string, 0, len(authErr.Errors))
	for field := range authErr.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		details = append(details, authErr.Errors[field]...)
	}
	return authErr.Message, details
}
