package domain

import "errors"

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session record")
)

// Session represents an authenticated principal for the lifetime of a login.
// It is created from a successful login or signup response and persisted as a
// single record in the browser under a fixed cookie key.
type Session struct {
	UserID          int64  `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Token           string `json:"token"`
}

// Validate reports whether the record is structurally complete. A session is
// either wholly valid or treated as absent; half-populated records are corrupt
// and must be discarded by the caller.
func (s *Session) Validate() error {
	if s == nil {
		return ErrNoSession
	}
	if s.UserID <= 0 || s.Username == "" || s.Token == "" {
		return ErrInvalidSession
	}
	return nil
}
