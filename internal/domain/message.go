package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExists   = errors.New("conversation already exists")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
	ErrEmptyMessage         = errors.New("message content is empty")
	ErrMessageTooLong       = errors.New("message content is too long")
)

// Conversation is a direct-message thread between two users. Usernames are
// denormalized because user accounts live in the external auth service.
type Conversation struct {
	ID            string    `json:"id"`
	PeerAID       int64     `json:"peer_a_id"`
	PeerAUsername string    `json:"peer_a_username"`
	PeerBID       int64     `json:"peer_b_id"`
	PeerBUsername string    `json:"peer_b_username"`
	CreatedAt     time.Time `json:"created_at"`
}

// Participant reports whether userID belongs to the conversation.
func (c *Conversation) Participant(userID int64) bool {
	return c.PeerAID == userID || c.PeerBID == userID
}

// PeerOf returns the id and username of the other participant.
func (c *Conversation) PeerOf(userID int64) (int64, string) {
	if c.PeerAID == userID {
		return c.PeerBID, c.PeerBUsername
	}
	return c.PeerAID, c.PeerAUsername
}

// DirectMessage is a single message inside a conversation.
type DirectMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	GetByParticipants(ctx context.Context, a, b int64) (*Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]*Conversation, error)
}

// DirectMessageRepository defines the interface for message data access
type DirectMessageRepository interface {
	Create(ctx context.Context, message *DirectMessage) error
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]*DirectMessage, error)
	MarkRead(ctx context.Context, conversationID string, readerID int64) error
}
