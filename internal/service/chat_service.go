// Package service provides application business logic (chat, comments, users).
package service

import (
	"context"
	"errors"
	"strings"

	"kampus/internal/models"
	"kampus/internal/notifications"
	"kampus/internal/observability"
	"kampus/internal/repository"
)

const (
	maxMessageContentLen = 10000
	// Length of the denormalized conversation preview.
	lastMessagePreviewLen = 100
)

// ChatEvents receives post-commit signals for real-time delivery. Implemented
// by the server's websocket wiring; nil disables live fanout.
type ChatEvents interface {
	ConversationCreated(conv *models.Conversation)
	MessageSent(conv *models.Conversation, msg *models.Message)
	MessagesRead(conv *models.Conversation, readerID uint)
}

// ChatService provides two-party conversation and messaging business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	broker   *notifications.FeedBroker
	events   ChatEvents
}

// NewChatService returns a new ChatService. Broker and events may be nil.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	broker *notifications.FeedBroker,
	events ChatEvents,
) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		broker:   broker,
		events:   events,
	}
}

// GetOrCreateConversation returns the conversation between the two users,
// creating it when none exists. The operation is idempotent and symmetric in
// its arguments: both sides opening the chat at once end up in the same
// conversation.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userID, otherUserID uint) (*models.Conversation, error) {
	if userID == otherUserID {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}

	self, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	// Store the lower ID as side A so the row is identical no matter who
	// created it.
	a, b := self, other
	if a.ID > b.ID {
		a, b = b, a
	}
	conv := &models.Conversation{
		UserAID:          a.ID,
		UserBID:          b.ID,
		UserAUsername:    a.Username,
		UserBUsername:    b.Username,
		UserADisplayName: a.DisplayName,
		UserBDisplayName: b.DisplayName,
	}

	conv, created, err := s.chatRepo.GetOrCreateConversation(ctx, conv)
	if err != nil {
		return nil, err
	}
	if created {
		if s.broker != nil {
			s.broker.NotifyUser(conv.UserAID)
			s.broker.NotifyUser(conv.UserBID)
		}
		if s.events != nil {
			s.events.ConversationCreated(conv)
		}
	}
	return conv, nil
}

// GetConversations returns the user's conversations, most recent activity
// first, with unread counts.
func (s *ChatService) GetConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.chatRepo.GetUserConversations(ctx, userID)
}

// GetConversationForUser returns the conversation if the user is a participant.
func (s *ChatService) GetConversationForUser(ctx context.Context, convID, userID uint) (*models.Conversation, error) {
	conv, err := s.chatRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, models.NewUnauthorizedError("You are not a participant in this conversation")
	}
	return conv, nil
}

// SendMessage appends a message to the conversation. The message and the
// conversation's last-message summary are committed atomically; live
// subscribers are signalled only after the commit.
func (s *ChatService) SendMessage(ctx context.Context, convID, senderID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 10000 characters)")
	}

	conv, err := s.chatRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, models.NewUnauthorizedError("You are not a participant in this conversation")
	}

	senderUsername := conv.UserAUsername
	if senderID == conv.UserBID {
		senderUsername = conv.UserBUsername
	}

	msg := &models.Message{
		ConversationID: convID,
		SenderID:       senderID,
		SenderUsername: senderUsername,
		Content:        content,
	}
	preview := previewOf(content)
	if err := s.chatRepo.CreateMessage(ctx, msg, preview); err != nil {
		return nil, err
	}
	observability.MessagesSent.Inc()

	// Keep the in-memory row in step with what CreateMessage just committed,
	// so event consumers see this message's preview, not the previous one.
	conv.LastMessage = preview
	conv.LastMessageAt = msg.CreatedAt

	if s.broker != nil {
		s.broker.NotifyConversation(convID)
		s.broker.NotifyUser(conv.UserAID)
		s.broker.NotifyUser(conv.UserBID)
	}
	if s.events != nil {
		s.events.MessageSent(conv, msg)
	}
	return msg, nil
}

// GetMessagesForUser returns messages for a conversation in chronological
// order (participant check applied).
func (s *ChatService) GetMessagesForUser(ctx context.Context, convID, userID uint, limit, offset int) ([]*models.Message, error) {
	if _, err := s.GetConversationForUser(ctx, convID, userID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessages(ctx, convID, limit, offset)
}

// MarkMessagesAsRead marks every message from the other participant as read.
// Idempotent: repeating the call changes nothing and signals nobody.
func (s *ChatService) MarkMessagesAsRead(ctx context.Context, convID, readerID uint) (int64, error) {
	conv, err := s.chatRepo.GetConversation(ctx, convID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(readerID) {
		return 0, models.NewUnauthorizedError("You are not a participant in this conversation")
	}

	n, err := s.chatRepo.MarkMessagesRead(ctx, convID, readerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if s.broker != nil {
			s.broker.NotifyConversation(convID)
			s.broker.NotifyUser(readerID)
		}
		if s.events != nil {
			s.events.MessagesRead(conv, readerID)
		}
	}
	return n, nil
}

// SubscribeMessages opens a live snapshot feed over the conversation's
// messages for a participant.
func (s *ChatService) SubscribeMessages(ctx context.Context, convID, userID uint) (*notifications.MessageFeed, error) {
	if s.broker == nil {
		return nil, models.NewInternalError(errors.New("live feeds unavailable"))
	}
	if _, err := s.GetConversationForUser(ctx, convID, userID); err != nil {
		return nil, err
	}
	return s.broker.SubscribeMessages(ctx, convID)
}

// SubscribeConversations opens a live snapshot feed over the user's
// conversation list.
func (s *ChatService) SubscribeConversations(ctx context.Context, userID uint) (*notifications.ConversationFeed, error) {
	if s.broker == nil {
		return nil, models.NewInternalError(errors.New("live feeds unavailable"))
	}
	return s.broker.SubscribeConversations(ctx, userID)
}

// previewOf truncates content to the stored conversation summary length
// without splitting a multi-byte character.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= lastMessagePreviewLen {
		return content
	}
	return string(runes[:lastMessagePreviewLen])
}
