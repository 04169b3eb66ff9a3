package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"altcad-web/internal/domain"
)

const (
	maxMessageLength   = 1000
	defaultHistorySize = 50
	previewLength      = 80
)

// NotificationPublisher fans a new-message event out to the notification
// pipeline. Implemented by the RabbitMQ client; mocked in tests.
type NotificationPublisher interface {
	PublishMessageNotification(ctx context.Context, recipientID, actorID int64, actorUsername, preview string) error
}

// MessageService owns direct-message semantics: participant checks, content
// validation, persistence and notification fan-out.
type MessageService struct {
	conversations domain.ConversationRepository
	messages      domain.DirectMessageRepository
	publisher     NotificationPublisher
}

// NewMessageService creates a message service.
func NewMessageService(
	conversations domain.ConversationRepository,
	messages domain.DirectMessageRepository,
	publisher NotificationPublisher,
) *MessageService {
	return &MessageService{
		conversations: conversations,
		messages:      messages,
		publisher:     publisher,
	}
}

// StartConversation returns the conversation between the two users, creating
// it when none exists yet. Idempotent for a given pair.
func (s *MessageService) StartConversation(ctx context.Context, me *domain.Session, peerID int64, peerUsername string) (*domain.Conversation, error) {
	if peerID <= 0 || peerID == me.UserID {
		return nil, domain.ErrNotParticipant
	}

	existing, err := s.conversations.GetByParticipants(ctx, me.UserID, peerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, err
	}

	conversation := &domain.Conversation{
		PeerAID:       me.UserID,
		PeerAUsername: me.Username,
		PeerBID:       peerID,
		PeerBUsername: peerUsername,
	}
	err = s.conversations.Create(ctx, conversation)
	if errors.Is(err, domain.ErrConversationExists) {
		// The peer created it concurrently; return their row
		return s.conversations.GetByParticipants(ctx, me.UserID, peerID)
	}
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// Conversations lists the user's conversations, newest first.
func (s *MessageService) Conversations(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

// Send validates and persists a message, then fans out a notification to the
// other participant. Fan-out is best-effort: a broker failure is logged but
// the already-persisted message is still returned.
func (s *MessageService) Send(ctx context.Context, conversationID string, sender *domain.Session, content string) (*domain.DirectMessage, *domain.Conversation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, domain.ErrEmptyMessage
	}
	if len(content) > maxMessageLength {
		return nil, nil, domain.ErrMessageTooLong
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	if !conversation.Participant(sender.UserID) {
		return nil, nil, domain.ErrNotParticipant
	}

	message := &domain.DirectMessage{
		ConversationID: conversation.ID,
		SenderID:       sender.UserID,
		SenderUsername: sender.Username,
		Content:        content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, nil, err
	}

	recipientID, _ := conversation.PeerOf(sender.UserID)
	if err := s.publisher.PublishMessageNotification(ctx, recipientID, sender.UserID, sender.Username, preview(content)); err != nil {
		slog.Error("failed to publish message notification",
			slog.String("conversation_id", conversation.ID),
			slog.String("error", err.Error()))
	}

	return message, conversation, nil
}

// History returns the most recent messages of a conversation, oldest first,
// and marks the peer's messages as read for the requesting user.
func (s *MessageService) History(ctx context.Context, conversationID string, userID int64, limit int) ([]*domain.DirectMessage, error) {
	if limit <= 0 || limit > defaultHistorySize {
		limit = defaultHistorySize
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Participant(userID) {
		return nil, domain.ErrNotParticipant
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkRead(ctx, conversationID, userID); err != nil {
		slog.Warn("failed to mark messages read",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()))
	}

	return messages, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "…"
}
