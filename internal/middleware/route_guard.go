package middleware

import (
	"net/http"
	"strings"

	"altcad-web/internal/session"
)

// publicPrefixes are the page paths reachable without an active session.
var publicPrefixes = []string{"/login", "/signup"}

// Decision is the route guard's verdict for a navigation.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToHome
)

// Decide classifies a page path as public or private by prefix match and
// combines it with the presence of the session indicator. The check is
// deliberately presence-based: it runs before the session record has been
// unsealed, and the Session middleware re-validates afterwards. A stale
// indicator therefore still lands the user on a page that prompts login
// rather than asserting trust.
func Decide(path string, hasIndicator bool) Decision {
	public := false
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			public = true
			break
		}
	}

	switch {
	case !hasIndicator && !public:
		return RedirectToLogin
	case hasIndicator && public:
		return RedirectToHome
	default:
		return Allow
	}
}

// RouteGuard intercepts page navigation before rendering: unauthenticated
// users are sent to the login surface, authenticated users are kept away
// from the public-only login/signup pages.
func RouteGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := r.Cookie(session.CookieName)
			hasIndicator := err == nil

			switch Decide(r.URL.Path, hasIndicator) {
			case RedirectToLogin:
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case RedirectToHome:
				http.Redirect(w, r, "/", http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
