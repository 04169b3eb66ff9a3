package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"altcad-web/internal/domain"
	"altcad-web/internal/observability"
)

const maxResponseBytes = 1 << 20

// Fallback messages when no better diagnosis is available, matching the
// wording the login/signup forms have always shown.
const (
	fallbackLoginMessage  = "An error occurred during login"
	fallbackSignupMessage = "An error occurred during signup"
)

// Client talks to the external authentication service. It translates
// credentials into validated session records and normalizes every failure
// (transport, service rejection, malformed success) into *domain.AuthError;
// no raw transport error ever escapes to callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an authentication service client. baseURL is the service root,
// e.g. "http://localhost:3000/api/v1".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	User signupUser `json:"user"`
}

type signupUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the success shape of login and signup: a user object
// plus a signing token under the "jwt" key.
type sessionResponse struct {
	User *domain.User `json:"user"`
	JWT  string       `json:"jwt"`
}

// Login exchanges an email/password pair for a session record.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.authenticate(ctx, "login", loginRequest{Email: email, Password: password}, fallbackLoginMessage)
}

// Signup registers a new account and returns its session record. Registration
// fields are nested under the "user" key expected by the backend.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*domain.Session, error) {
	req := signupRequest{User: signupUser{Username: username, Email: email, Password: password}}
	return c.authenticate(ctx, "signup", req, fallbackSignupMessage)
}

func (c *Client) authenticate(ctx context.Context, operation string, payload any, fallback string) (*domain.Session, error) {
	start := time.Now()
	session, err := c.doAuthenticate(ctx, operation, payload, fallback)
	observability.AuthUpstreamDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	observability.AuthUpstreamRequests.WithLabelValues(operation, outcome).Inc()

	return session, err
}

func (c *Client) doAuthenticate(ctx context.Context, operation string, payload any, fallback string) (*domain.Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.AuthError{Message: fallback}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+operation, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.AuthError{Message: fallback}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.FromContext(ctx).Warn("auth service unreachable",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, &domain.AuthError{
			Message: fmt.Sprintf("Authentication service unreachable: %v", err),
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.AuthError{Message: fallback}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.rejectionError(operation, resp, data, fallback)
	}

	session, ok := decodeSession(data)
	if !ok {
		observability.FromContext(ctx).Warn("auth service returned malformed success body",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode))
		return nil, &domain.AuthError{
			Message: fmt.Sprintf("Authentication service returned an unexpected response (status %d)", resp.StatusCode),
		}
	}
	return session, nil
}

// rejectionError maps a non-2xx response to an AuthError. Message priority:
// structured body message, then an HTML/malformed-body diagnostic, then the
// generic fallback.
func (c *Client) rejectionError(operation string, resp *http.Response, data []byte, fallback string) *domain.AuthError {
	if looksLikeHTML(resp, data) {
		return &domain.AuthError{
			Message: fmt.Sprintf("Authentication service returned an HTML error page (status %d)", resp.StatusCode),
		}
	}

	var authErr domain.AuthError
	if err := json.Unmarshal(data, &authErr); err == nil && authErr.Message != "" {
		return &authErr
	}

	if len(bytes.TrimSpace(data)) > 0 {
		return &domain.AuthError{
			Message: fmt.Sprintf("Authentication service returned an unexpected response (status %d)", resp.StatusCode),
		}
	}
	return &domain.AuthError{Message: fallback}
}

// decodeSession maps a success body onto a session record. A success response
// missing the user object or the token is malformed, not a partial success.
func decodeSession(data []byte) (*domain.Session, bool) {
	var sr sessionResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, false
	}
	if sr.User == nil || sr.JWT == "" {
		return nil, false
	}

	session := &domain.Session{
		UserID:          sr.User.ID,
		Username:        sr.User.Username,
		Name:            sr.User.Name,
		Email:           sr.User.Email,
		ProfileImageURL: sr.User.ProfileImageURL,
		Token:           sr.JWT,
	}
	if err := session.Validate(); err != nil {
		return nil, false
	}
	return session, true
}

// FetchUser retrieves a user profile from the authentication service,
// attaching the given authorization header.
func (c *Client) FetchUser(ctx context.Context, id int64, header map[string]string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var user domain.User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// AuthorizationHeader returns the bearer header for a session, or an empty
// map when no session is held. Collaborators issuing authenticated requests
// merge it into their own headers.
func AuthorizationHeader(session *domain.Session) map[string]string {
	if session == nil || session.Token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + session.Token}
}

func looksLikeHTML(resp *http.Response, data []byte) bool {
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return true
	}
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte("<!DOCTYPE")) || bytes.HasPrefix(trimmed, []byte("<html"))
}
