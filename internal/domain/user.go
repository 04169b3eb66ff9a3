package domain

import "errors"

var ErrUserNotFound = errors.New("user not found")

// User is a user profile as reported by the authentication backend.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}
