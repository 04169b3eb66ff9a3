package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"altcad-web/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	messageInsertSQL = `INSERT INTO messages (conversation_id, sender_id, sender_username, content)`
	messageListSQL   = `SELECT id, conversation_id, sender_id, sender_username, content, read, created_at`
	messageReadSQL   = `UPDATE messages SET read = TRUE`
)

func setupMessageRepositoryMocks(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare(regexp.QuoteMeta(messageInsertSQL))
	mock.ExpectPrepare(regexp.QuoteMeta(messageListSQL))
	mock.ExpectPrepare(regexp.QuoteMeta(messageReadSQL))
}

func TestNewMessageRepository(t *testing.T) {
	t.Run("successful_creation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		setupMessageRepositoryMocks(mock)

		repo, err := NewMessageRepository(db)
		require.NoError(t, err)
		assert.NotNil(t, repo)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails_when_prepare_fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPrepare(regexp.QuoteMeta(messageInsertSQL)).
			WillReturnError(errors.New("prepare failed"))

		repo, err := NewMessageRepository(db)
		require.Error(t, err)
		assert.Nil(t, repo)
		assert.Contains(t, err.Error(), "failed to prepare create statement")
	})
}

func TestMessageRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupMessageRepositoryMocks(mock)

	repo, err := NewMessageRepository(db)
	require.NoError(t, err)

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(messageInsertSQL)).
		WithArgs("conv-1", int64(1), "alice", "hello").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("msg-1", createdAt))

	message := &domain.DirectMessage{
		ConversationID: "conv-1",
		SenderID:       1,
		SenderUsername: "alice",
		Content:        "hello",
	}

	err = repo.Create(context.Background(), message)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", message.ID)
	assert.Equal(t, createdAt, message.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_ListByConversation_OldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupMessageRepositoryMocks(mock)

	repo, err := NewMessageRepository(db)
	require.NoError(t, err)

	now := time.Now()
	// The query returns newest first; the repository reverses for display
	mock.ExpectQuery(regexp.QuoteMeta(messageListSQL)).
		WithArgs("conv-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "sender_username", "content", "read", "created_at"}).
			AddRow("msg-2", "conv-1", int64(2), "bob", "newer", false, now).
			AddRow("msg-1", "conv-1", int64(1), "alice", "older", true, now.Add(-time.Minute)))

	messages, err := repo.ListByConversation(context.Background(), "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-1", messages[0].ID)
	assert.Equal(t, "msg-2", messages[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_MarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupMessageRepositoryMocks(mock)

	repo, err := NewMessageRepository(db)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(messageReadSQL)).
		WithArgs("conv-1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = repo.MarkRead(context.Background(), "conv-1", 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
