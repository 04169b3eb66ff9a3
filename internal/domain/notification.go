package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification types. Message notifications are produced by this application;
// the remaining kinds arrive on the same event exchange from other services.
const (
	NotificationMessage = "message"
	NotificationLike    = "like"
	NotificationRetweet = "retweet"
	NotificationFollow  = "follow"
	NotificationReply   = "reply"
)

// Notification is an item on a user's notifications page.
type Notification struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	Type          string    `json:"type"`
	ActorID       int64     `json:"actor_id"`
	ActorUsername string    `json:"actor_username"`
	Body          string    `json:"body"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}
