package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"altcad-web/internal/authclient"
	"altcad-web/internal/domain"
	"altcad-web/internal/middleware"
	"altcad-web/internal/security"
	"altcad-web/internal/service"

	"github.com/go-chi/chi/v5"
)

// PageHandler renders the authenticated pages. Every route it serves sits
// behind the route guard, so a request reaching it carries the session cookie;
// the session may still resolve to absent when the stored record was corrupt
// and got self-healed, in which case the user is bounced to the login page.
type PageHandler struct {
	renderer      *Renderer
	tokens        *security.TokenManager
	users         *authclient.Client
	messages      *service.MessageService
	notifications *service.NotificationService
}

// NewPageHandler creates a new page handler.
func NewPageHandler(
	renderer *Renderer,
	tokens *security.TokenManager,
	users *authclient.Client,
	messages *service.MessageService,
	notifications *service.NotificationService,
) *PageHandler {
	return &PageHandler{
		renderer:      renderer,
		tokens:        tokens,
		users:         users,
		messages:      messages,
		notifications: notifications,
	}
}

// basePageData is what every authenticated page needs: the viewer, the CSRF
// token for its forms, and the unread badge count.
type basePageData struct {
	Title       string
	Session     *domain.Session
	CSRFToken   string
	UnreadCount int64
}

func (h *PageHandler) base(r *http.Request, title string) (basePageData, *domain.Session, bool) {
	s, ok := middleware.GetSession(r.Context())
	if !ok {
		return basePageData{}, nil, false
	}

	unread, err := h.notifications.UnreadCount(r.Context(), s.UserID)
	if err != nil {
		slog.Warn("failed to count unread notifications",
			slog.String("error", err.Error()),
			slog.Int64("user_id", s.UserID))
	}

	return basePageData{
		Title:       title,
		Session:     s,
		CSRFToken:   h.tokens.TokenFor(s.Token),
		UnreadCount: unread,
	}, s, true
}

// Home renders the home timeline shell.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	data, _, ok := h.base(r, "Home")
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, http.StatusOK, "home.html", data)
}

type profilePageData struct {
	basePageData
	User *domain.User
}

// Profile renders a user profile, fetched fresh from the authentication
// service with the viewer's bearer token. /profile shows the viewer's own.
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	data, s, ok := h.base(r, "Profile")
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	userID := s.UserID
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}
		userID = id
	}

	user, err := h.users.FetchUser(r.Context(), userID, authclient.AuthorizationHeader(s))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to fetch profile",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		http.Error(w, "Failed to load profile", http.StatusBadGateway)
		return
	}

	h.renderer.Render(w, http.StatusOK, "profile.html", profilePageData{
		basePageData: data,
		User:         user,
	})
}

type messagesPageData struct {
	basePageData
	Conversations []*domain.Conversation
	Selected      *domain.Conversation
	Messages      []*domain.DirectMessage
}

// Messages renders the conversation list, and the history of the conversation
// selected via ?conversation=<id>.
func (h *PageHandler) Messages(w http.ResponseWriter, r *http.Request) {
	data, s, ok := h.base(r, "Messages")
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	conversations, err := h.messages.Conversations(r.Context(), s.UserID)
	if err != nil {
		slog.Error("failed to list conversations",
			slog.String("error", err.Error()),
			slog.Int64("user_id", s.UserID))
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}

	page := messagesPageData{basePageData: data, Conversations: conversations}

	if id := r.URL.Query().Get("conversation"); id != "" {
		history, err := h.messages.History(r.Context(), id, s.UserID, 0)
		switch {
		case errors.Is(err, domain.ErrConversationNotFound), errors.Is(err, domain.ErrNotParticipant):
			http.NotFound(w, r)
			return
		case err != nil:
			slog.Error("failed to load conversation history",
				slog.String("error", err.Error()),
				slog.String("conversation_id", id))
			http.Error(w, "Failed to load messages", http.StatusInternalServerError)
			return
		}
		page.Messages = history
		for _, c := range conversations {
			if c.ID == id {
				page.Selected = c
				break
			}
		}
	}

	h.renderer.Render(w, http.StatusOK, "messages.html", page)
}

type notificationsPageData struct {
	basePageData
	Notifications []*domain.Notification
}

// Notifications renders the notifications page.
func (h *PageHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	data, s, ok := h.base(r, "Notifications")
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	notifications, err := h.notifications.List(r.Context(), s.UserID, 0)
	if err != nil {
		slog.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.Int64("user_id", s.UserID))
		http.Error(w, "Failed to load notifications", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "notifications.html", notificationsPageData{
		basePageData:  data,
		Notifications: notifications,
	})
}
