package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"altcad-web/internal/domain"
	"altcad-web/internal/observability"
)

// MessageRepository implements domain.DirectMessageRepository for PostgreSQL.
// Hot statements are prepared once at construction.
type MessageRepository struct {
	db         *sql.DB
	createStmt *sql.Stmt
	listStmt   *sql.Stmt
	readStmt   *sql.Stmt
}

// NewMessageRepository creates a new PostgreSQL message repository with
// prepared statements. Returns an error if statement preparation fails.
func NewMessageRepository(db *sql.DB) (*MessageRepository, error) {
	repo := &MessageRepository{db: db}

	var err error
	repo.createStmt, err = db.Prepare(`
		INSERT INTO messages (conversation_id, sender_id, sender_username, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare create statement: %w", err)
	}

	repo.listStmt, err = db.Prepare(`
		SELECT id, conversation_id, sender_id, sender_username, content, read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare list statement: %w", err)
	}

	repo.readStmt, err = db.Prepare(`
		UPDATE messages SET read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare markRead statement: %w", err)
	}

	return repo, nil
}

// Create inserts a new message into the database
func (r *MessageRepository) Create(ctx context.Context, message *domain.DirectMessage) error {
	start := time.Now()
	err := r.createStmt.QueryRowContext(ctx,
		message.ConversationID,
		message.SenderID,
		message.SenderUsername,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt)
	observability.DBQueryDuration.WithLabelValues("insert", "messages").Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByConversation retrieves messages for a conversation, oldest first.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*domain.DirectMessage, error) {
	rows, err := r.listStmt.QueryContext(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.DirectMessage, 0, limit)
	for rows.Next() {
		msg := &domain.DirectMessage{}
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.SenderUsername,
			&msg.Content,
			&msg.Read,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	// Query returns newest first for the LIMIT; present oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// MarkRead marks every message in the conversation not sent by readerID as read.
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID string, readerID int64) error {
	if _, err := r.readStmt.ExecContext(ctx, conversationID, readerID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}
