package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"altcad-web/internal/domain"
	"altcad-web/internal/middleware"
	"altcad-web/internal/service"

	"github.com/go-chi/chi/v5"
)

// MessageHandler exposes the direct-message JSON API consumed by the pages'
// client-side scripts.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// ListConversations handles GET /api/v1/conversations.
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustSession(r.Context())

	conversations, err := h.messages.Conversations(r.Context(), s.UserID)
	if err != nil {
		http.Error(w, `{"error":"Failed to list conversations"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"conversations": conversations})
}

// StartConversationRequest opens a conversation with another user.
type StartConversationRequest struct {
	PeerID       int64  `json:"peer_id"`
	PeerUsername string `json:"peer_username"`
}

// StartConversation handles POST /api/v1/conversations. Idempotent: opening a
// conversation that already exists returns the existing one.
func (h *MessageHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustSession(r.Context())

	var req StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	conversation, err := h.messages.StartConversation(r.Context(), s, req.PeerID, req.PeerUsername)
	if err != nil {
		if errors.Is(err, domain.ErrNotParticipant) {
			http.Error(w, `{"error":"Invalid conversation peer"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"Failed to start conversation"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"conversation": conversation})
}

// History handles GET /api/v1/conversations/{id}/messages.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustSession(r.Context())
	conversationID := chi.URLParam(r, "id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, err := h.messages.History(r.Context(), conversationID, s.UserID, limit)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"messages": messages})
}

// SendMessageRequest is the body of a message send.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Send handles POST /api/v1/conversations/{id}/messages. The fallback path
// for clients without an open inbox connection.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustSession(r.Context())
	conversationID := chi.URLParam(r, "id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	message, _, err := h.messages.Send(r.Context(), conversationID, s, req.Content)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"message": message})
}

func writeMessageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound), errors.Is(err, domain.ErrNotParticipant):
		// Non-participants cannot distinguish "not yours" from "not there"
		http.Error(w, `{"error":"Conversation not found"}`, http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyMessage):
		http.Error(w, `{"error":"Message is empty"}`, http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrMessageTooLong):
		http.Error(w, `{"error":"Message is too long"}`, http.StatusUnprocessableEntity)
	default:
		http.Error(w, `{"error":"Failed to send message"}`, http.StatusInternalServerError)
	}
}
