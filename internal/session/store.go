package session

import (
	"log/slog"
	"net/http"

	"altcad-web/internal/domain"
)

// CookieName is the fixed well-known key under which the single session
// record is persisted, scoped to the browser origin. The route guard checks
// the same cookie for presence without unsealing it.
const CookieName = "user"

const cookieMaxAge = 7 * 24 * 60 * 60 // 7 days

// CookieStore persists at most one session record per browser. All side
// effects are confined to cookie headers; it performs no network calls.
type CookieStore struct {
	codec  *Codec
	secure bool
}

// NewCookieStore creates a cookie-backed credential store. secure controls
// the Secure cookie attribute (true in production behind HTTPS).
func NewCookieStore(codec *Codec, secure bool) *CookieStore {
	return &CookieStore{codec: codec, secure: secure}
}

// Save serializes and stores the record, overwriting any existing one.
// Structurally invalid records are never persisted.
func (s *CookieStore) Save(w http.ResponseWriter, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	value, err := s.codec.Seal(session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load retrieves the stored record. It returns absent when no record exists,
// when the record cannot be opened or decoded, or when it fails structural
// validation. On any failure the store self-heals by expiring the cookie, so
// a half-valid session is never returned and never lingers.
func (s *CookieStore) Load(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}

	session, err := s.codec.Open(cookie.Value)
	if err != nil {
		slog.Debug("discarding unreadable session record")
		s.Clear(w)
		return nil, false
	}

	if err := session.Validate(); err != nil {
		slog.Debug("discarding structurally invalid session record")
		s.Clear(w)
		return nil, false
	}

	return session, true
}

// Clear removes any stored record. Idempotent and safe when none exists.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
