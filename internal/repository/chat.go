package repository

import (
	"context"
	"errors"

	"kampus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	// GetOrCreateConversation inserts the conversation unless one already
	// exists for the same participant pair, in which case the existing row is
	// returned. The boolean reports whether a new conversation was created.
	GetOrCreateConversation(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error)
	CreateMessage(ctx context.Context, msg *models.Message, preview string) error
	GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, convID, readerID uint) (int64, error)
	UnreadCount(ctx context.Context, convID, userID uint) (int64, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetOrCreateConversation(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	conv.PairKey = models.PairKeyFor(conv.UserAID, conv.UserBID)

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(conv)
	if res.Error != nil {
		if !isUniqueConstraintError(res.Error) {
			return nil, false, models.NewInternalError(res.Error)
		}
		// Lost a concurrent insert race: fall through to the fetch below.
	} else if res.RowsAffected > 0 {
		return conv, true, nil
	}

	var existing models.Conversation
	if err := r.db.WithContext(ctx).
		Where("pair_key = ?", conv.PairKey).
		First(&existing).Error; err != nil {
		return nil, false, models.NewInternalError(err)
	}
	return &existing, false, nil
}

func (r *chatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (r *chatRepository) GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(conversations) == 0 {
		return conversations, nil
	}

	ids := make([]uint, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.ID)
	}

	// One grouped query for the unread badge of every conversation in the list.
	type unreadRow struct {
		ConversationID uint
		Count          int64
	}
	var rows []unreadRow
	err = r.db.WithContext(ctx).Model(&models.Message{}).
		Select("conversation_id, COUNT(*) as count").
		Where("conversation_id IN ? AND sender_id <> ? AND read = ?", ids, userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	unread := make(map[uint]int64, len(rows))
	for _, row := range rows {
		unread[row.ConversationID] = row.Count
	}
	for _, c := range conversations {
		c.UnreadCount = unread[c.ID]
	}
	return conversations, nil
}

// CreateMessage appends the message and updates the conversation's denormalized
// last-message summary in the same transaction, so list views never see a
// message without its summary or vice versa.
func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message, preview string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message":    preview,
				"last_message_at": msg.CreatedAt,
			}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Fetched DESC to page from the latest message backwards; clients expect
	// each page oldest -> newest, so reverse in place.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// MarkMessagesRead flags every unread message sent by the other participant.
// The sender filter keeps a reader from marking their own messages, so the
// call is idempotent and safe to repeat on every conversation open.
func (r *chatRepository) MarkMessagesRead(ctx context.Context, convID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", convID, readerID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *chatRepository) UnreadCount(ctx context.Context, convID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", convID, userID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
