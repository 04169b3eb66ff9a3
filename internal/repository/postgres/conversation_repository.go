package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"altcad-web/internal/domain"
	"altcad-web/internal/observability"
)

// ConversationRepository implements domain.ConversationRepository for PostgreSQL
type ConversationRepository struct {
	db *sql.DB
}

// NewConversationRepository creates a new PostgreSQL conversation repository
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a new conversation. Participants are stored in a fixed
// (lower id, higher id) order so the pair is unique regardless of who opened
// the thread.
func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	if conversation.PeerAID > conversation.PeerBID {
		conversation.PeerAID, conversation.PeerBID = conversation.PeerBID, conversation.PeerAID
		conversation.PeerAUsername, conversation.PeerBUsername = conversation.PeerBUsername, conversation.PeerAUsername
	}

	query := `
		INSERT INTO conversations (peer_a_id, peer_a_username, peer_b_id, peer_b_username)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	start := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		conversation.PeerAID,
		conversation.PeerAUsername,
		conversation.PeerBID,
		conversation.PeerBUsername,
	).Scan(&conversation.ID, &conversation.CreatedAt)
	observability.DBQueryDuration.WithLabelValues("insert", "conversations").Observe(time.Since(start).Seconds())

	if IsUniqueViolation(err, "conversations_pair_unique") {
		// Lost a race with the other peer opening the same thread
		return domain.ErrConversationExists
	}
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetByID retrieves a conversation by id
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT id, peer_a_id, peer_a_username, peer_b_id, peer_b_username, created_at
		FROM conversations
		WHERE id = $1
	`

	conversation := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conversation.ID,
		&conversation.PeerAID,
		&conversation.PeerAUsername,
		&conversation.PeerBID,
		&conversation.PeerBUsername,
		&conversation.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conversation, nil
}

// GetByParticipants retrieves the conversation between two users, if any.
func (r *ConversationRepository) GetByParticipants(ctx context.Context, a, b int64) (*domain.Conversation, error) {
	if a > b {
		a, b = b, a
	}

	query := `
		SELECT id, peer_a_id, peer_a_username, peer_b_id, peer_b_username, created_at
		FROM conversations
		WHERE peer_a_id = $1 AND peer_b_id = $2
	`

	conversation := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, query, a, b).Scan(
		&conversation.ID,
		&conversation.PeerAID,
		&conversation.PeerAUsername,
		&conversation.PeerBID,
		&conversation.PeerBUsername,
		&conversation.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation by participants: %w", err)
	}
	return conversation, nil
}

// ListByUser retrieves all conversations a user participates in, most
// recently created first.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Conversation, error) {
	query := `
		SELECT id, peer_a_id, peer_a_username, peer_b_id, peer_b_username, created_at
		FROM conversations
		WHERE peer_a_id = $1 OR peer_b_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]*domain.Conversation, 0)
	for rows.Next() {
		c := &domain.Conversation{}
		err := rows.Scan(
			&c.ID,
			&c.PeerAID,
			&c.PeerAUsername,
			&c.PeerBID,
			&c.PeerBUsername,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return conversations, nil
}
