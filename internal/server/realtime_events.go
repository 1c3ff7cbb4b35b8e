package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"kampus/internal/models"
	"kampus/internal/notifications"
)

// Event type constants prevent typos in event names.
const (
	EventConversationCreated = "conversation_created"
	EventMessage             = "message"
	EventMessagesRead        = "read"
	EventConversations       = "conversations"
)

// ConversationCreated implements service.ChatEvents. Both participants get a
// conversation-list push so the new thread appears without a refresh.
func (s *Server) ConversationCreated(conv *models.Conversation) {
	event := notifications.ChatEvent{
		Type:           EventConversationCreated,
		ConversationID: conv.ID,
		Payload:        conv,
	}
	s.publishListEvent(conv.UserAID, event)
	s.publishListEvent(conv.UserBID, event)
}

// MessageSent implements service.ChatEvents. The message fans out to everyone
// viewing the conversation; both participants also get a list push carrying
// the updated preview and unread state.
func (s *Server) MessageSent(conv *models.Conversation, msg *models.Message) {
	s.publishConversationEvent(conv.ID, notifications.ChatEvent{
		Type:           EventMessage,
		ConversationID: conv.ID,
		UserID:         msg.SenderID,
		Username:       msg.SenderUsername,
		Payload:        msg,
	})

	listEvent := notifications.ChatEvent{
		Type:           EventConversations,
		ConversationID: conv.ID,
		UserID:         msg.SenderID,
		Username:       msg.SenderUsername,
		Payload: map[string]interface{}{
			"conversation_id": conv.ID,
			"message_id":      msg.ID,
			"preview":         conv.LastMessage,
			"created_at":      msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	s.publishListEvent(conv.UserAID, listEvent)
	s.publishListEvent(conv.UserBID, listEvent)
}

// MessagesRead implements service.ChatEvents.
func (s *Server) MessagesRead(conv *models.Conversation, readerID uint) {
	s.publishConversationEvent(conv.ID, notifications.ChatEvent{
		Type:           EventMessagesRead,
		ConversationID: conv.ID,
		UserID:         readerID,
		Payload: map[string]interface{}{
			"conversation_id": conv.ID,
			"user_id":         readerID,
			"read_at":         time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
}

// publishConversationEvent routes through Redis when available so every
// instance's hub delivers it; without Redis it goes straight to the local hub.
func (s *Server) publishConversationEvent(conversationID uint, event notifications.ChatEvent) {
	if s.notifier != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("failed to marshal %s event: %v", event.Type, err)
			return
		}
		if err := s.notifier.PublishConversation(context.Background(), conversationID, string(payload)); err != nil {
			log.Printf("failed to publish %s event to conversation %d: %v", event.Type, conversationID, err)
		}
		return
	}
	if s.chatHub != nil {
		s.chatHub.BroadcastToConversation(conversationID, event)
	}
}

func (s *Server) publishListEvent(userID uint, event notifications.ChatEvent) {
	if s.notifier != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("failed to marshal %s event: %v", event.Type, err)
			return
		}
		if err := s.notifier.PublishConversationList(context.Background(), userID, string(payload)); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", event.Type, userID, err)
		}
		return
	}
	if s.chatHub != nil {
		s.chatHub.BroadcastToUser(userID, event)
	}
}
