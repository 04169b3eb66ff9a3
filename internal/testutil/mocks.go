// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the altcad-web application.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"altcad-web/internal/domain"
)

// MockConversationRepository implements domain.ConversationRepository for testing
type MockConversationRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc            func(ctx context.Context, conversation *domain.Conversation) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Conversation, error)
	GetByParticipantsFunc func(ctx context.Context, a, b int64) (*domain.Conversation, error)
	ListByUserFunc        func(ctx context.Context, userID int64) ([]*domain.Conversation, error)

	// In-memory storage for simple tests
	Conversations map[string]*domain.Conversation
}

// NewMockConversationRepository creates a new MockConversationRepository with initialized maps
func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		Conversations: make(map[string]*domain.Conversation),
	}
}

func (m *MockConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, conversation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if conversation.ID == "" {
		conversation.ID = fmt.Sprintf("conv-%d", len(m.Conversations)+1)
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	m.Conversations[conversation.ID] = conversation
	return nil
}

func (m *MockConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if conversation, ok := m.Conversations[id]; ok {
		return conversation, nil
	}
	return nil, domain.ErrConversationNotFound
}

func (m *MockConversationRepository) GetByParticipants(ctx context.Context, a, b int64) (*domain.Conversation, error) {
	if m.GetByParticipantsFunc != nil {
		return m.GetByParticipantsFunc(ctx, a, b)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conversation := range m.Conversations {
		if conversation.Participant(a) && conversation.Participant(b) {
			return conversation, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (m *MockConversationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*domain.Conversation{}
	for _, conversation := range m.Conversations {
		if conversation.Participant(userID) {
			result = append(result, conversation)
		}
	}
	return result, nil
}

// MockDirectMessageRepository implements domain.DirectMessageRepository for testing
type MockDirectMessageRepository struct {
	mu sync.RWMutex

	CreateFunc             func(ctx context.Context, message *domain.DirectMessage) error
	ListByConversationFunc func(ctx context.Context, conversationID string, limit int) ([]*domain.DirectMessage, error)
	MarkReadFunc           func(ctx context.Context, conversationID string, readerID int64) error

	Messages []*domain.DirectMessage

	// MarkReadCalls records (conversationID, readerID) pairs
	MarkReadCalls [][2]any
}

// NewMockDirectMessageRepository creates a new MockDirectMessageRepository
func NewMockDirectMessageRepository() *MockDirectMessageRepository {
	return &MockDirectMessageRepository{}
}

func (m *MockDirectMessageRepository) Create(ctx context.Context, message *domain.DirectMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", len(m.Messages)+1)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.Messages = append(m.Messages, message)
	return nil
}

func (m *MockDirectMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*domain.DirectMessage, error) {
	if m.ListByConversationFunc != nil {
		return m.ListByConversationFunc(ctx, conversationID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*domain.DirectMessage{}
	for _, message := range m.Messages {
		if message.ConversationID == conversationID {
			result = append(result, message)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (m *MockDirectMessageRepository) MarkRead(ctx context.Context, conversationID string, readerID int64) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, conversationID, readerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkReadCalls = append(m.MarkReadCalls, [2]any{conversationID, readerID})
	for _, message := range m.Messages {
		if message.ConversationID == conversationID && message.SenderID != readerID {
			message.Read = true
		}
	}
	return nil
}

// MockNotificationRepository implements domain.NotificationRepository for testing
type MockNotificationRepository struct {
	mu sync.RWMutex

	CreateFunc      func(ctx context.Context, notification *domain.Notification) error
	ListByUserFunc  func(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error)
	MarkAllReadFunc func(ctx context.Context, userID int64) (int64, error)
	CountUnreadFunc func(ctx context.Context, userID int64) (int64, error)

	Notifications []*domain.Notification
}

// NewMockNotificationRepository creates a new MockNotificationRepository
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, notification)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = fmt.Sprintf("notif-%d", len(m.Notifications)+1)
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	m.Notifications = append(m.Notifications, notification)
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*domain.Notification{}
	for _, notification := range m.Notifications {
		if notification.UserID == userID {
			result = append(result, notification)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, notification := range m.Notifications {
		if notification.UserID == userID && !notification.Read {
			notification.Read = true
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, notification := range m.Notifications {
		if notification.UserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}

// PublishedNotification records one PublishMessageNotification call.
type PublishedNotification struct {
	RecipientID   int64
	ActorID       int64
	ActorUsername string
	Preview       string
}

// MockNotificationPublisher implements service.NotificationPublisher for testing
type MockNotificationPublisher struct {
	mu sync.Mutex

	PublishFunc func(ctx context.Context, recipientID, actorID int64, actorUsername, preview string) error

	Published []PublishedNotification
}

// NewMockNotificationPublisher creates a new MockNotificationPublisher
func NewMockNotificationPublisher() *MockNotificationPublisher {
	return &MockNotificationPublisher{}
}

func (m *MockNotificationPublisher) PublishMessageNotification(ctx context.Context, recipientID, actorID int64, actorUsername, preview string) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, recipientID, actorID, actorUsername, preview)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Published = append(m.Published, PublishedNotification{
		RecipientID:   recipientID,
		ActorID:       actorID,
		ActorUsername: actorUsername,
		Preview:       preview,
	})
	return nil
}
