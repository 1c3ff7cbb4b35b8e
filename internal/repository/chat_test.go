package repository

import (
	"context"
	"fmt"
	"testing"

	"kampus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func newConversation(a, b *models.User) *models.Conversation {
	return &models.Conversation{
		UserAID:          a.ID,
		UserBID:          b.ID,
		UserAUsername:    a.Username,
		UserBUsername:    b.Username,
		UserADisplayName: a.DisplayName,
		UserBDisplayName: b.DisplayName,
	}
}

func TestChatRepositoryConversations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	user1 := &models.User{Username: "ayse", Email: "ayse@example.com", Password: "x", DisplayName: "Ayşe"}
	user2 := &models.User{Username: "mehmet", Email: "mehmet@example.com", Password: "x", DisplayName: "Mehmet"}
	user3 := &models.User{Username: "zeynep", Email: "zeynep@example.com", Password: "x", DisplayName: "Zeynep"}
	db.Create(user1)
	db.Create(user2)
	db.Create(user3)

	t.Run("CreateNew", func(t *testing.T) {
		conv, created, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user2))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, conv.ID)
		assert.Equal(t, models.PairKeyFor(user1.ID, user2.ID), conv.PairKey)
	})

	t.Run("SamePairReturnsExisting", func(t *testing.T) {
		first, created, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user3))
		require.NoError(t, err)
		assert.True(t, created)

		again, created, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user3))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("ReversedPairReturnsExisting", func(t *testing.T) {
		first, _, err := repo.GetOrCreateConversation(ctx, newConversation(user2, user3))
		require.NoError(t, err)

		reversed, created, err := repo.GetOrCreateConversation(ctx, newConversation(user3, user2))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, reversed.ID)
	})

	t.Run("GetConversationNotFound", func(t *testing.T) {
		_, err := repo.GetConversation(ctx, 9999)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestChatRepositoryMessages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	user1 := &models.User{Username: "ayse", Email: "ayse@example.com", Password: "x", DisplayName: "Ayşe"}
	user2 := &models.User{Username: "mehmet", Email: "mehmet@example.com", Password: "x", DisplayName: "Mehmet"}
	db.Create(user1)
	db.Create(user2)

	conv, _, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user2))
	require.NoError(t, err)

	t.Run("CreateMessageUpdatesSummary", func(t *testing.T) {
		msg := &models.Message{
			ConversationID: conv.ID,
			SenderID:       user1.ID,
			SenderUsername: user1.Username,
			Content:        "Selam, Erasmus başvurun nasıl gitti?",
		}
		err := repo.CreateMessage(ctx, msg, msg.Content)
		require.NoError(t, err)
		assert.NotZero(t, msg.ID)

		fetched, err := repo.GetConversation(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, msg.Content, fetched.LastMessage)
		assert.Equal(t, msg.CreatedAt.UTC(), fetched.LastMessageAt.UTC())
	})

	t.Run("GetMessagesChronological", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			msg := &models.Message{
				ConversationID: conv.ID,
				SenderID:       user2.ID,
				SenderUsername: user2.Username,
				Content:        fmt.Sprintf("reply %d", i),
			}
			require.NoError(t, repo.CreateMessage(ctx, msg, msg.Content))
		}

		msgs, err := repo.GetMessages(ctx, conv.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
		for i := 1; i < len(msgs); i++ {
			assert.True(t, msgs[i-1].ID < msgs[i].ID, "messages must be oldest first")
		}
		assert.Equal(t, "reply 2", msgs[len(msgs)-1].Content)
	})

	t.Run("GetMessagesPagesFromLatest", func(t *testing.T) {
		msgs, err := repo.GetMessages(ctx, conv.ID, 2, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "reply 1", msgs[0].Content)
		assert.Equal(t, "reply 2", msgs[1].Content)
	})
}

func TestChatRepositoryReadState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	user1 := &models.User{Username: "ayse", Email: "ayse@example.com", Password: "x", DisplayName: "Ayşe"}
	user2 := &models.User{Username: "mehmet", Email: "mehmet@example.com", Password: "x", DisplayName: "Mehmet"}
	db.Create(user1)
	db.Create(user2)

	conv, _, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user2))
	require.NoError(t, err)

	send := func(sender *models.User, content string) {
		t.Helper()
		msg := &models.Message{
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			SenderUsername: sender.Username,
			Content:        content,
		}
		require.NoError(t, repo.CreateMessage(ctx, msg, content))
	}

	send(user1, "merhaba")
	send(user1, "orada mısın?")
	send(user2, "buradayım")

	t.Run("MarkSkipsOwnMessages", func(t *testing.T) {
		// user2 opens the conversation: only user1's two messages flip.
		n, err := repo.MarkMessagesRead(ctx, conv.ID, user2.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		unread, err := repo.UnreadCount(ctx, conv.ID, user2.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)

		// user2's own message is still unread from user1's side.
		unread, err = repo.UnreadCount(ctx, conv.ID, user1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unread)
	})

	t.Run("MarkIsIdempotent", func(t *testing.T) {
		n, err := repo.MarkMessagesRead(ctx, conv.ID, user2.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestChatRepositoryConversationList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	user1 := &models.User{Username: "ayse", Email: "ayse@example.com", Password: "x", DisplayName: "Ayşe"}
	user2 := &models.User{Username: "mehmet", Email: "mehmet@example.com", Password: "x", DisplayName: "Mehmet"}
	user3 := &models.User{Username: "zeynep", Email: "zeynep@example.com", Password: "x", DisplayName: "Zeynep"}
	db.Create(user1)
	db.Create(user2)
	db.Create(user3)

	convA, _, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user2))
	require.NoError(t, err)
	convB, _, err := repo.GetOrCreateConversation(ctx, newConversation(user1, user3))
	require.NoError(t, err)

	send := func(conv *models.Conversation, sender *models.User, content string) {
		t.Helper()
		msg := &models.Message{
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			SenderUsername: sender.Username,
			Content:        content,
		}
		require.NoError(t, repo.CreateMessage(ctx, msg, content))
	}

	send(convA, user2, "ilk mesaj")
	send(convB, user3, "sonraki mesaj")
	send(convB, user3, "hala orada mısın")

	t.Run("OrderedByRecency", func(t *testing.T) {
		convs, err := repo.GetUserConversations(ctx, user1.ID)
		require.NoError(t, err)
		require.Len(t, convs, 2)
		assert.Equal(t, convB.ID, convs[0].ID)
		assert.Equal(t, convA.ID, convs[1].ID)
	})

	t.Run("UnreadBadges", func(t *testing.T) {
		convs, err := repo.GetUserConversations(ctx, user1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), convs[0].UnreadCount)
		assert.Equal(t, int64(1), convs[1].UnreadCount)

		// The senders have nothing unread on their side.
		theirs, err := repo.GetUserConversations(ctx, user3.ID)
		require.NoError(t, err)
		require.Len(t, theirs, 1)
		assert.Zero(t, theirs[0].UnreadCount)
	})

	t.Run("NonParticipantSeesNothing", func(t *testing.T) {
		convs, err := repo.GetUserConversations(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, convs)
	})
}
