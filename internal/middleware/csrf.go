package middleware

import (
	"log/slog"
	"net/http"

	"altcad-web/internal/security"
)

// CSRF validates CSRF tokens on state-changing requests from authenticated
// users. Tokens are HMAC-derived from the session token (see security
// package), so verification needs no server-side storage.
//
// Token sources (checked in order):
//   - Form field: csrf_token
//   - Header: X-CSRF-Token
//
// Mount after the Session middleware on authenticated route groups only;
// login and signup submissions carry no session and are not covered.
func CSRF(tokens *security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := GetSession(r.Context())
			if !ok {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			token := r.PostFormValue("csrf_token")
			if token == "" {
				token = r.Header.Get("X-CSRF-Token")
			}

			if err := tokens.Verify(session.Token, token); err != nil {
				slog.Warn("rejected request with invalid csrf token",
					slog.String("path", r.URL.Path),
					slog.Int64("user_id", session.UserID))
				http.Error(w, `{"error":"Invalid CSRF token"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
