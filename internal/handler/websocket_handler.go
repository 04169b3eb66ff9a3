package handler

import (
	"context"
	"log/slog"
	"net/http"

	"altcad-web/internal/middleware"
	"altcad-web/internal/service"
	ws "altcad-web/internal/websocket"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades authenticated requests into inbox connections.
type WebSocketHandler struct {
	hub      *ws.Hub
	messages *service.MessageService
	upgrader websocket.Upgrader

	// Connections outlive the HTTP request; their lifetime is bound to the
	// server's, not the handler's.
	baseCtx context.Context
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigins lists
// the origins permitted to open inbox connections; requests without an Origin
// header (non-browser clients) are allowed through.
func NewWebSocketHandler(baseCtx context.Context, hub *ws.Hub, messages *service.MessageService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return &WebSocketHandler{
		hub:      hub,
		messages: messages,
		baseCtx:  baseCtx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAll || allowed[origin]
			},
		},
	}
}

// HandleInbox handles GET /ws/inbox.
func (h *WebSocketHandler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("user", session.Username))
		return
	}

	client := ws.NewClient(h.baseCtx, h.hub, conn, uuid.New().String(), session, h.messages)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
