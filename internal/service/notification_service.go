package service

import (
	"context"

	"altcad-web/internal/domain"
)

const defaultNotificationPageSize = 50

// NotificationService manages the notifications page: persistence of
// incoming events and read-state bookkeeping.
type NotificationService struct {
	notifications domain.NotificationRepository
}

// NewNotificationService creates a notification service.
func NewNotificationService(notifications domain.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Record persists a notification arriving from the event pipeline. Unknown
// kinds are stored as-is; the page renders them generically.
func (s *NotificationService) Record(ctx context.Context, notification *domain.Notification) error {
	return s.notifications.Create(ctx, notification)
}

// List returns the user's most recent notifications.
func (s *NotificationService) List(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > defaultNotificationPageSize {
		limit = defaultNotificationPageSize
	}
	return s.notifications.ListByUser(ctx, userID, limit)
}

// MarkAllRead marks every notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}
