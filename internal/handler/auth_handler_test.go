package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"altcad-web/internal/domain"
	"altcad-web/internal/session"
	"altcad-web/internal/testutil"
)

// countingAuthAPI implements session.AuthAPI and counts upstream calls
type countingAuthAPI struct {
	calls atomic.Int64

	loginFunc  func(ctx context.Context, email, password string) (*domain.Session, error)
	signupFunc func(ctx context.Context, username, email, password string) (*domain.Session, error)
}

func (c *countingAuthAPI) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	c.calls.Add(1)
	if c.loginFunc != nil {
		return c.loginFunc(ctx, email, password)
	}
	return testutil.NewTestSession(), nil
}

func (c *countingAuthAPI) Signup(ctx context.Context, username, email, password string) (*domain.Session, error) {
	c.calls.Add(1)
	if c.signupFunc != nil {
		return c.signupFunc(ctx, username, email, password)
	}
	return testutil.NewTestSession(testutil.WithSessionUsername(username)), nil
}

func newTestAuthHandler(t *testing.T, api session.AuthAPI) *AuthHandler {
	t.Helper()
	renderer, err := NewRenderer("../../web/templates")
	testutil.AssertNoError(t, err)

	store := session.NewCookieStore(session.NewCodec("test-secret"), false)
	return NewAuthHandler(renderer, session.NewManager(api, store))
}

func TestAuthHandler_Login_Success(t *testing.T) {
	api := &countingAuthAPI{}
	h := newTestAuthHandler(t, api)

	req := testutil.NewFormRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret",
	})
	w := httptest.NewRecorder()
	h.Login(w, req)

	testutil.AssertStatusCode(t, w, http.StatusSeeOther)
	testutil.AssertEqual(t, w.Header().Get("Location"), "/")
	testutil.AssertCookie(t, w, session.CookieName)
	testutil.AssertEqual(t, api.calls.Load(), int64(1))
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	api := &countingAuthAPI{
		loginFunc: func(ctx context.Context, email, password string) (*domain.Session, error) {
			return nil, &domain.AuthError{Message: "Invalid email or password."}
		},
	}
	h := newTestAuthHandler(t, api)

	req := testutil.NewFormRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	w := httptest.NewRecorder()
	h.Login(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
	body := w.Body.String()
	testutil.AssertContains(t, body, "Invalid email or password.")
	// Email survives the round trip, the password never does
	testutil.AssertContains(t, body, `value="alice@example.com"`)
	if w.Result().Cookies() != nil {
		for _, c := range w.Result().Cookies() {
			if c.Name == session.CookieName && c.Value != "" {
				t.Error("rejected login must not set a session cookie")
			}
		}
	}
}

func TestAuthHandler_Signup_PasswordMismatchIsLocal(t *testing.T) {
	api := &countingAuthAPI{}
	h := newTestAuthHandler(t, api)

	req := testutil.NewFormRequest(t, http.MethodPost, "/signup", map[string]string{
		"username":              "bob",
		"email":                 "bob@example.com",
		"password":              "secret",
		"password_confirmation": "different",
	})
	w := httptest.NewRecorder()
	h.Signup(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnprocessableEntity)
	testutil.AssertContains(t, w.Body.String(), "Passwords do not match")
	// The mismatch is caught before any network call
	testutil.AssertEqual(t, api.calls.Load(), int64(0))
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	api := &countingAuthAPI{}
	h := newTestAuthHandler(t, api)

	req := testutil.NewFormRequest(t, http.MethodPost, "/signup", map[string]string{
		"username":              "bob",
		"email":                 "bob@example.com",
		"password":              "secret",
		"password_confirmation": "secret",
	})
	w := httptest.NewRecorder()
	h.Signup(w, req)

	testutil.AssertStatusCode(t, w, http.StatusSeeOther)
	testutil.AssertEqual(t, w.Header().Get("Location"), "/")
	testutil.AssertCookie(t, w, session.CookieName)
}

func TestAuthHandler_Signup_UpstreamFieldErrors(t *testing.T) {
	api := &countingAuthAPI{
		signupFunc: func(ctx context.Context, username, email, password string) (*domain.Session, error) {
			return nil, &domain.AuthError{
				Message: "Failed to create user.",
				Errors:  map[string][]string{"base": {"Username has already been taken"}},
			}
		},
	}
	h := newTestAuthHandler(t, api)

	req := testutil.NewFormRequest(t, http.MethodPost, "/signup", map[string]string{
		"username":              "taken",
		"email":                 "taken@example.com",
		"password":              "secret",
		"password_confirmation": "secret",
	})
	w := httptest.NewRecorder()
	h.Signup(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnprocessableEntity)
	body := w.Body.String()
	testutil.AssertContains(t, body, "Failed to create user.")
	testutil.AssertContains(t, body, "Username has already been taken")
}

func TestAuthHandler_Logout(t *testing.T) {
	h := newTestAuthHandler(t, &countingAuthAPI{})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	testutil.AssertStatusCode(t, w, http.StatusSeeOther)
	testutil.AssertEqual(t, w.Header().Get("Location"), "/login")
	testutil.AssertExpiredCookie(t, w, session.CookieName)
}

func TestAuthHandler_LoginPage(t *testing.T) {
	h := newTestAuthHandler(t, &countingAuthAPI{})

	w := httptest.NewRecorder()
	h.LoginPage(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertContains(t, w.Body.String(), `action="/login"`)
}
