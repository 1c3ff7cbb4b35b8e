// Package notifications provides real-time delivery for chat: websocket hubs,
// a Redis pub/sub notifier for cross-instance fanout, and snapshot feeds.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish chat events into Redis channels.
// All publishers are no-ops when Redis is unavailable, so a single-instance
// deployment still works through the in-process hubs alone.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishConversation sends a conversation-scoped event (new message, read
// receipt) to every instance with subscribers on that conversation.
func (n *Notifier) PublishConversation(
	ctx context.Context, conversationID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ConversationChannel(conversationID), payload).Err()
}

// PublishConversationList signals that a user's conversation list changed
// (new conversation, new last message, unread counts).
func (n *Notifier) PublishConversationList(
	ctx context.Context, userID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ConversationListChannel(userID), payload).Err()
}

// PublishPresence publishes a user's presence status to a conversation
func (n *Notifier) PublishPresence(
	ctx context.Context, conversationID, userID uint, username, status string,
) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("presence:conv:%d", conversationID)
	payload := map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"status":   status, // "online", "offline"
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, channel, string(payloadJSON)).Err()
}

// StartChatSubscriber subscribes to conversation-scoped patterns and calls
// onMessage for each incoming message. Subscribes to: chat:conv:*, presence:conv:*
func (n *Notifier) StartChatSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	return n.subscribe(ctx, onMessage, "ChatSubscriber", "chat:conv:*", "presence:conv:*")
}

// StartListSubscriber subscribes to the conversation-list pattern
// chatlist:user:* and calls onMessage for each incoming message.
func (n *Notifier) StartListSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	return n.subscribe(ctx, onMessage, "ListSubscriber", "chatlist:user:*")
}

func (n *Notifier) subscribe(
	ctx context.Context, onMessage func(channel, payload string), name string, patterns ...string,
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, patterns...)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// ConversationChannel derives the Redis channel name for a conversation.
func ConversationChannel(conversationID uint) string {
	return "chat:conv:" + strconv.FormatUint(uint64(conversationID), 10)
}

// ConversationListChannel derives the Redis channel name for a user's
// conversation list.
func ConversationListChannel(userID uint) string {
	return "chatlist:user:" + strconv.FormatUint(uint64(userID), 10)
}
