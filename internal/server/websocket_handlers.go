// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"kampus/internal/middleware"
	"kampus/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketChatHandler handles WebSocket connections for real-time chat.
// One socket carries everything: per-conversation message fanout (after an
// explicit join), a live conversation-list feed, and presence.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		// Get userID from context locals (set by AuthRequired middleware)
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket Chat: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil || user == nil {
			log.Printf("WebSocket Chat: Failed to get user %d: %v", userID, err)
			_ = conn.Close()
			return
		}
		username := user.Username

		if s.chatHub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket Chat: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var incomingMsg map[string]interface{}
			if err := json.Unmarshal(message, &incomingMsg); err != nil {
				log.Printf("WebSocket: Invalid message format from user %d", userID)
				return
			}

			msgType, ok := incomingMsg["type"].(string)
			if !ok {
				return
			}

			switch msgType {
			case "join":
				// Join a conversation to receive its message fanout
				if convIDFloat, ok := incomingMsg["conversation_id"].(float64); ok {
					convID := uint(convIDFloat)
					if _, err := s.chatService.GetConversationForUser(ctx, convID, userID); err != nil {
						return
					}
					s.chatHub.JoinConversation(userID, convID)

					response := notifications.ChatEvent{
						Type:           "joined",
						ConversationID: convID,
						Payload:        map[string]interface{}{"conversation_id": convID},
					}
					responseJSON, _ := json.Marshal(response)
					c.TrySend(responseJSON)
				}

			case "leave":
				if convIDFloat, ok := incomingMsg["conversation_id"].(float64); ok {
					s.chatHub.LeaveConversation(userID, uint(convIDFloat))
				}

			case "typing":
				// Typing indicator - limit to 10 per 10 seconds to prevent spam
				if convIDFloat, ok := incomingMsg["conversation_id"].(float64); ok {
					convID := uint(convIDFloat)
					isTyping, _ := incomingMsg["is_typing"].(bool)

					if s.notifier == nil {
						return
					}
					if _, err := s.chatService.GetConversationForUser(ctx, convID, userID); err != nil {
						return
					}
					id := fmt.Sprintf("user:%d", userID)
					allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "typing", id, 10, 10*time.Second)
					if !allowed {
						return // Silently drop spammy typing indicators
					}
					status := "typing_stopped"
					if isTyping {
						status = "typing"
					}
					if perr := s.notifier.PublishPresence(ctx, convID, userID, username, status); perr != nil {
						log.Printf("publish typing indicator error: %v", perr)
					}
				}

			case "message":
				// Send a message (alternative to the HTTP endpoint)
				if convIDFloat, ok := incomingMsg["conversation_id"].(float64); ok {
					convID := uint(convIDFloat)
					content, _ := incomingMsg["content"].(string)
					if content == "" {
						return
					}

					// Rate limit messages - same as HTTP (15 per minute)
					id := fmt.Sprintf("user:%d", userID)
					allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 15, time.Minute)
					if !allowed {
						response := notifications.ChatEvent{
							Type: "error",
							Payload: map[string]string{
								"message": "Rate limit exceeded. Please wait a moment.",
							},
						}
						if respJSON, err := json.Marshal(response); err == nil {
							c.TrySend(respJSON)
						}
						return
					}

					// Fanout happens inside the service via ChatEvents.
					if _, serr := s.chatService.SendMessage(ctx, convID, userID, content); serr != nil {
						log.Printf("WebSocket: Failed to send message: %v", serr)
					}
				}

			case "read":
				if convIDFloat, ok := incomingMsg["conversation_id"].(float64); ok {
					convID := uint(convIDFloat)
					if _, rerr := s.chatService.MarkMessagesAsRead(ctx, convID, userID); rerr != nil {
						log.Printf("mark messages read error: %v", rerr)
					}
				}
			}
		}

		// Send welcome message
		welcomeMsg := notifications.ChatEvent{
			Type:    "connected",
			Payload: map[string]interface{}{"user_id": userID, "username": username},
		}
		if welcomeJSON, err := json.Marshal(welcomeMsg); err == nil {
			client.TrySend(welcomeJSON)
		}

		// Stream the conversation-list feed over this socket for as long as it
		// lives. The initial snapshot lands right after the welcome frame.
		feedCtx, cancelFeed := context.WithCancel(ctx)
		defer cancelFeed()
		go s.streamConversationFeed(feedCtx, client, userID)

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}

// streamConversationFeed forwards conversation-list snapshots to one client
// until the context is cancelled or the feed closes.
func (s *Server) streamConversationFeed(ctx context.Context, client *notifications.Client, userID uint) {
	feed, err := s.chatService.SubscribeConversations(ctx, userID)
	if err != nil {
		log.Printf("WebSocket: conversation feed for user %d: %v", userID, err)
		return
	}
	defer feed.Cancel()

	send := func(snapshot interface{}) {
		event := notifications.ChatEvent{
			Type:    EventConversations,
			UserID:  userID,
			Payload: snapshot,
		}
		if eventJSON, err := json.Marshal(event); err == nil {
			client.TrySend(eventJSON)
		}
	}

	send(feed.Initial)
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-feed.Updates:
			if !ok {
				return
			}
			send(snapshot)
		}
	}
}
