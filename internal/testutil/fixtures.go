package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"altcad-web/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// SessionOptions allows customizing session fixture creation
type SessionOptions struct {
	UserID   int64
	Username string
	Name     string
	Email    string
	Token    string
}

// NewTestSession creates a valid session record with sensible defaults
func NewTestSession(opts ...func(*SessionOptions)) *domain.Session {
	n := idCounter.Add(1)
	o := &SessionOptions{
		UserID:   n,
		Username: fmt.Sprintf("testuser%d", n),
		Name:     fmt.Sprintf("Test User %d", n),
		Token:    fmt.Sprintf("token-%d", n),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = o.Username + "@example.com"
	}

	return &domain.Session{
		UserID:   o.UserID,
		Username: o.Username,
		Name:     o.Name,
		Email:    o.Email,
		Token:    o.Token,
	}
}

// WithSessionUserID sets the user id
func WithSessionUserID(id int64) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.UserID = id
	}
}

// WithSessionUsername sets the username
func WithSessionUsername(username string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Username = username
	}
}

// WithSessionToken sets the bearer token
func WithSessionToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Token = token
	}
}

// ConversationOptions allows customizing conversation fixture creation
type ConversationOptions struct {
	ID            string
	PeerAID       int64
	PeerAUsername string
	PeerBID       int64
	PeerBUsername string
	CreatedAt     time.Time
}

// NewTestConversation creates a test conversation between two users
func NewTestConversation(opts ...func(*ConversationOptions)) *domain.Conversation {
	o := &ConversationOptions{
		ID:            nextID("conv"),
		PeerAID:       1,
		PeerAUsername: "alice",
		PeerBID:       2,
		PeerBUsername: "bob",
		CreatedAt:     time.Now(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Conversation{
		ID:            o.ID,
		PeerAID:       o.PeerAID,
		PeerAUsername: o.PeerAUsername,
		PeerBID:       o.PeerBID,
		PeerBUsername: o.PeerBUsername,
		CreatedAt:     o.CreatedAt,
	}
}

// WithConversationID sets the conversation ID
func WithConversationID(id string) func(*ConversationOptions) {
	return func(o *ConversationOptions) {
		o.ID = id
	}
}

// WithPeers sets both participants
func WithPeers(aID int64, aUsername string, bID int64, bUsername string) func(*ConversationOptions) {
	return func(o *ConversationOptions) {
		o.PeerAID = aID
		o.PeerAUsername = aUsername
		o.PeerBID = bID
		o.PeerBUsername = bUsername
	}
}

// NotificationOptions allows customizing notification fixture creation
type NotificationOptions struct {
	ID            string
	UserID        int64
	Type          string
	ActorID       int64
	ActorUsername string
	Body          string
	Read          bool
	CreatedAt     time.Time
}

// NewTestNotification creates a test notification with sensible defaults
func NewTestNotification(opts ...func(*NotificationOptions)) *domain.Notification {
	o := &NotificationOptions{
		ID:            nextID("notif"),
		UserID:        1,
		Type:          domain.NotificationMessage,
		ActorID:       2,
		ActorUsername: "bob",
		Body:          "hello",
		CreatedAt:     time.Now(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Notification{
		ID:            o.ID,
		UserID:        o.UserID,
		Type:          o.Type,
		ActorID:       o.ActorID,
		ActorUsername: o.ActorUsername,
		Body:          o.Body,
		Read:          o.Read,
		CreatedAt:     o.CreatedAt,
	}
}

// WithNotificationUserID sets the recipient
func WithNotificationUserID(id int64) func(*NotificationOptions) {
	return func(o *NotificationOptions) {
		o.UserID = id
	}
}

// WithNotificationType sets the kind
func WithNotificationType(kind string) func(*NotificationOptions) {
	return func(o *NotificationOptions) {
		o.Type = kind
	}
}

// WithNotificationRead marks the notification read
func WithNotificationRead() func(*NotificationOptions) {
	return func(o *NotificationOptions) {
		o.Read = true
	}
}

// ResetIDCounter resets the ID counter (useful for deterministic tests)
func ResetIDCounter() {
	idCounter.Store(0)
}
