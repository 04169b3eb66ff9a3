package handler

import (
	"encoding/json"
	"net/http"

	"altcad-web/internal/middleware"
	"altcad-web/internal/service"
)

// NotificationHandler exposes the notifications JSON API.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/v1/notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustSession(r.Context())

	notifications, err := h.notifications.List(r.Context(), s.UserID, 0)
	if err != nil {
		http.Error(w, `{"error":"Failed to list notifications"}`, http.StatusInternalServerError)
		return
	}

	unread, err := h.notifications.UnreadCount(r.Context(), s.UserID)
	if err != nil {
		http.Error(w, `{"error":"Failed to list notifications"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkAllRead handles POST /api/v1/notifications/read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustSession(r.Context())

	updated, err := h.notifications.MarkAllRead(r.Context(), s.UserID)
	if err != nil {
		http.Error(w, `{"error":"Failed to mark notifications read"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"updated": updated})
}
