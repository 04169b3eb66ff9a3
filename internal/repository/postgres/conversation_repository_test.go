package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"altcad-web/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	conversationInsertSQL = `INSERT INTO conversations (peer_a_id, peer_a_username, peer_b_id, peer_b_username)`
	conversationSelectSQL = `SELECT id, peer_a_id, peer_a_username, peer_b_id, peer_b_username, created_at`
)

func TestConversationRepository_Create_NormalizesPeerOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationRepository(db)

	// Opened by the higher id; stored with the lower id first
	mock.ExpectQuery(regexp.QuoteMeta(conversationInsertSQL)).
		WithArgs(int64(2), "alice", int64(5), "bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("conv-1", time.Now()))

	conversation := &domain.Conversation{
		PeerAID:       5,
		PeerAUsername: "bob",
		PeerBID:       2,
		PeerBUsername: "alice",
	}

	err = repo.Create(context.Background(), conversation)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conversation.ID)
	assert.Equal(t, int64(2), conversation.PeerAID)
	assert.Equal(t, "alice", conversation.PeerAUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationRepository(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(conversationSelectSQL)).
			WithArgs("conv-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "peer_a_id", "peer_a_username", "peer_b_id", "peer_b_username", "created_at"}).
				AddRow("conv-1", int64(1), "alice", int64(2), "bob", time.Now()))

		conversation, err := repo.GetByID(context.Background(), "conv-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), conversation.PeerAID)
		assert.Equal(t, "bob", conversation.PeerBUsername)
	})

	t.Run("not_found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(conversationSelectSQL)).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "peer_a_id", "peer_a_username", "peer_b_id", "peer_b_username", "created_at"}))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_GetByParticipants_NormalizesOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(conversationSelectSQL)).
		WithArgs(int64(2), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "peer_a_id", "peer_a_username", "peer_b_id", "peer_b_username", "created_at"}).
			AddRow("conv-1", int64(2), "alice", int64(5), "bob", time.Now()))

	// Queried with the pair reversed
	conversation, err := repo.GetByParticipants(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conversation.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(conversationSelectSQL)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "peer_a_id", "peer_a_username", "peer_b_id", "peer_b_username", "created_at"}).
			AddRow("conv-2", int64(1), "alice", int64(3), "carol", now).
			AddRow("conv-1", int64(1), "alice", int64(2), "bob", now.Add(-time.Hour)))

	conversations, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "conv-2", conversations[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
