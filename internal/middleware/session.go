package middleware

import (
	"context"
	"net/http"

	"altcad-web/internal/domain"
	"altcad-web/internal/observability"
	"altcad-web/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// Session resolves the current session exactly once per request, before any
// handler runs, and injects it into the request context. Handlers therefore
// always observe a settled state: authenticated (session present) or
// unauthenticated (absent), never an intermediate one. Corrupt stored
// records are self-healed by the store and resolve to unauthenticated.
func Session(store *session.CookieStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), sessionKey, resolveSession(store, w, r))
			if s, ok := GetSession(ctx); ok {
				ctx = observability.WithUserID(ctx, s.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type resolved struct {
	session *domain.Session
}

func resolveSession(store *session.CookieStore, w http.ResponseWriter, r *http.Request) resolved {
	s, ok := store.Load(w, r)
	if !ok {
		return resolved{}
	}
	return resolved{session: s}
}

// GetSession returns the session resolved for this request. The second
// result is false when the request is unauthenticated. Calling it on a
// request that never passed through the Session middleware also returns
// false; use MustSession where that would be a wiring bug.
func GetSession(ctx context.Context) (*domain.Session, bool) {
	res, ok := ctx.Value(sessionKey).(resolved)
	if !ok || res.session == nil {
		return nil, false
	}
	return res.session, true
}

// MustSession returns the session for a request that is guaranteed to be
// authenticated. It panics when the request never passed through the Session
// middleware, which is incorrect composition rather than a runtime condition.
func MustSession(ctx context.Context) *domain.Session {
	res, ok := ctx.Value(sessionKey).(resolved)
	if !ok {
		panic("middleware: session read outside the Session middleware scope")
	}
	if res.session == nil {
		panic("middleware: MustSession called on an unauthenticated request")
	}
	return res.session
}

// WithSession injects a session into a context. Intended for tests.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, resolved{session: s})
}

// RequireSession rejects unauthenticated requests with a JSON 401. Used for
// the hydration API, where a redirect would be wrong.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSession(r.Context()); !ok {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
