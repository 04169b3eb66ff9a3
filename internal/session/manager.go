package session

import (
	"context"
	"net/http"

	"altcad-web/internal/domain"

	"golang.org/x/sync/singleflight"
)

// AuthAPI is the slice of the authentication service client the manager
// needs: credential exchange only.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Signup(ctx context.Context, username, email, password string) (*domain.Session, error)
}

// Manager owns the current-session state for the application: it mediates
// between the authentication service client and the credential store, and is
// the only place login, signup and logout mutate persisted state. It is
// explicitly constructed and injected rather than held in package globals.
type Manager struct {
	api    AuthAPI
	store  *CookieStore
	flight singleflight.Group
}

// NewManager creates a session manager.
func NewManager(api AuthAPI, store *CookieStore) *Manager {
	return &Manager{api: api, store: store}
}

// Login exchanges credentials for a session record and persists it.
// Concurrent duplicate submissions for the same identifier are coalesced
// into a single upstream call; the later submitter shares the first result.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, email, password string) (*domain.Session, error) {
	v, err, _ := m.flight.Do("login\x00"+email, func() (any, error) {
		return m.api.Login(ctx, email, password)
	})
	if err != nil {
		return nil, err
	}
	return m.persist(w, v.(*domain.Session))
}

// Signup registers an account, then persists the resulting session record.
func (m *Manager) Signup(ctx context.Context, w http.ResponseWriter, username, email, password string) (*domain.Session, error) {
	v, err, _ := m.flight.Do("signup\x00"+username+"\x00"+email, func() (any, error) {
		return m.api.Signup(ctx, username, email, password)
	})
	if err != nil {
		return nil, err
	}
	return m.persist(w, v.(*domain.Session))
}

func (m *Manager) persist(w http.ResponseWriter, session *domain.Session) (*domain.Session, error) {
	if err := m.store.Save(w, session); err != nil {
		// Callers display a single error type; persistence failure is no
		// more recoverable for them than a rejected credential.
		return nil, &domain.AuthError{Message: "Failed to persist session"}
	}
	return session, nil
}

// Logout discards the persisted record. No network call is made; the bearer
// token is simply dropped client-side. Idempotent.
func (m *Manager) Logout(w http.ResponseWriter) {
	m.store.Clear(w)
}

// Current returns the persisted session, if any, delegating to the store's
// self-healing load.
func (m *Manager) Current(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	return m.store.Load(w, r)
}
