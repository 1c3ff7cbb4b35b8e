package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"kampus/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// ChatHub manages the chat websocket connections of one server instance.
// Routing is two-level: per-user connection sets for conversation-list pushes,
// and conversation rooms for message fanout to whoever is viewing a thread.
type ChatHub struct {
	mu sync.RWMutex

	// conversationID -> set of userIDs currently viewing it
	rooms map[uint]map[uint]struct{}

	// userID -> set of conversationIDs they're actively viewing
	userRooms map[uint]map[uint]struct{}

	// userID -> set of active Clients (multi-device support)
	userConns  map[uint]map[*Client]struct{}
	totalConns int

	presence *ConnectionManager
	wsLog    *observability.WSLogger
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// ChatEvent is the envelope every frame on the chat socket uses.
type ChatEvent struct {
	Type           string      `json:"type"` // "message", "read", "presence", "conversations", "user_status", "connected_users"
	ConversationID uint        `json:"conversation_id,omitempty"`
	UserID         uint        `json:"user_id,omitempty"`
	Username       string      `json:"username,omitempty"`
	Payload        interface{} `json:"payload"`
}

// NewChatHub creates a new ChatHub instance. Redis is optional; without it
// presence falls back to this instance's local connection table.
func NewChatHub(redisClients ...*redis.Client) *ChatHub {
	var rdb *redis.Client
	if len(redisClients) > 0 {
		rdb = redisClients[0]
	}
	h := &ChatHub{
		rooms:     make(map[uint]map[uint]struct{}),
		userRooms: make(map[uint]map[uint]struct{}),
		userConns: make(map[uint]map[*Client]struct{}),
		presence:  NewConnectionManager(rdb, ConnectionManagerConfig{}),
		wsLog:     observability.NewWSLogger("chat hub"),
	}
	h.presence.SetCallbacks(
		func(userID uint) { h.BroadcastUserStatus(userID, "online") },
		func(userID uint) { h.BroadcastUserStatus(userID, "offline") },
	)
	return h
}

// SetPresenceCallbacks installs online/offline transition hooks.
func (h *ChatHub) SetPresenceCallbacks(onOnline, onOffline func(userID uint)) {
	if h.presence != nil {
		h.presence.SetCallbacks(onOnline, onOffline)
	}
}

// Register registers a user's websocket connection. Returns Client or error if limits exceeded.
func (h *ChatHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid uint) {
		if h.presence != nil {
			h.presence.Touch(context.Background(), uid)
		}
	}
	if err := h.addClient(client); err != nil {
		return nil, err
	}
	return client, nil
}

func (h *ChatHub) addClient(client *Client) error {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return errors.New("server connection limit reached")
	}

	if h.userConns[client.UserID] == nil {
		h.userConns[client.UserID] = make(map[*Client]struct{})
	}
	if len(h.userConns[client.UserID]) >= maxConnsPerUser {
		h.mu.Unlock()
		return errors.New("user connection limit reached")
	}

	h.userConns[client.UserID][client] = struct{}{}
	h.totalConns++

	onlineIDs := make([]uint, 0, len(h.userConns))
	for id := range h.userConns {
		if id != client.UserID {
			onlineIDs = append(onlineIDs, id)
		}
	}
	h.mu.Unlock()

	observability.ActiveWebSockets.Inc()
	h.wsLog.LogConnect(context.Background(), client.UserID)
	if h.presence != nil {
		h.presence.Register(context.Background(), client.UserID)
	}

	// Initial snapshot of who else is online on this instance.
	if len(onlineIDs) > 0 {
		snapshot := ChatEvent{
			Type:    "connected_users",
			Payload: map[string]interface{}{"user_ids": onlineIDs},
		}
		if raw, err := json.Marshal(snapshot); err == nil {
			client.TrySend(raw)
		}
	}

	return nil
}

// UnregisterClient removes a websocket connection and, when it was the user's
// last one, cleans up their room subscriptions and announces them offline.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := clients[client]; !exists {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	h.totalConns--

	if len(clients) > 0 {
		h.mu.Unlock()
		observability.ActiveWebSockets.Dec()
		if h.presence != nil {
			h.presence.Unregister(context.Background(), client.UserID)
		}
		return
	}
	delete(h.userConns, client.UserID)

	// Last connection gone: drop every room membership.
	if rooms, ok := h.userRooms[client.UserID]; ok {
		for convID := range rooms {
			if users, ok := h.rooms[convID]; ok {
				delete(users, client.UserID)
				if len(users) == 0 {
					delete(h.rooms, convID)
				}
			}
		}
		delete(h.userRooms, client.UserID)
	}
	h.mu.Unlock()

	observability.ActiveWebSockets.Dec()
	h.wsLog.LogDisconnect(context.Background(), client.UserID)
	if h.presence != nil {
		// Offline status is announced by the presence manager once the grace
		// window elapses without a reconnect.
		h.presence.Unregister(context.Background(), client.UserID)
	}
}

// IsUserOnline reports whether the user has at least one live chat socket,
// on this instance or (via Redis presence) any other.
func (h *ChatHub) IsUserOnline(userID uint) bool {
	if h.presence != nil {
		return h.presence.IsOnline(context.Background(), userID)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.userConns[userID]
	return ok && len(clients) > 0
}

// JoinConversation subscribes a user to a conversation's live events.
func (h *ChatHub) JoinConversation(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.userConns[userID]; !ok {
		log.Printf("ChatHub: User %d not connected, cannot join conversation %d", userID, conversationID)
		return
	}

	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[uint]struct{})
	}
	h.rooms[conversationID][userID] = struct{}{}

	if h.userRooms[userID] == nil {
		h.userRooms[userID] = make(map[uint]struct{})
	}
	h.userRooms[userID][conversationID] = struct{}{}
}

// LeaveConversation unsubscribes a user from a conversation
func (h *ChatHub) LeaveConversation(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if users, ok := h.rooms[conversationID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	if rooms, ok := h.userRooms[userID]; ok {
		delete(rooms, conversationID)
	}
}

// BroadcastToConversation sends an event to every client of every user
// currently viewing the conversation.
func (h *ChatHub) BroadcastToConversation(conversationID uint, event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.rooms[conversationID]
	if !ok {
		return
	}

	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: Failed to marshal event: %v", err)
		return
	}

	for userID := range users {
		if clients, ok := h.userConns[userID]; ok {
			for client := range clients {
				client.TrySend(raw)
			}
		}
	}
}

// BroadcastToUser sends an event to all of a user's clients regardless of
// which conversation they are viewing. Used for conversation-list updates.
func (h *ChatHub) BroadcastToUser(userID uint, event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: Failed to marshal event: %v", err)
		return
	}
	if clients, ok := h.userConns[userID]; ok {
		for client := range clients {
			client.TrySend(raw)
		}
	}
}

// BroadcastUserStatus sends a "user_status" event (online/offline) to all
// connected users except the one it concerns.
func (h *ChatHub) BroadcastUserStatus(userID uint, status string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := ChatEvent{
		Type:    "user_status",
		UserID:  userID,
		Payload: map[string]interface{}{"status": status, "user_id": userID},
	}
	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: Failed to marshal status event: %v", err)
		return
	}

	for id, clients := range h.userConns {
		if id == userID {
			continue
		}
		for client := range clients {
			client.TrySend(raw)
		}
	}
}

// GetActiveUsers returns the list of userIDs currently viewing a conversation
func (h *ChatHub) GetActiveUsers(conversationID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.rooms[conversationID]
	if !ok {
		return []uint{}
	}
	result := make([]uint, 0, len(users))
	for userID := range users {
		result = append(result, userID)
	}
	return result
}

// IsUserActive checks if a user is currently viewing a conversation
func (h *ChatHub) IsUserActive(userID, conversationID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rooms, ok := h.userRooms[userID]; ok {
		_, active := rooms[conversationID]
		return active
	}
	return false
}

// StartWiring connects the hub to Redis pub/sub so events published by other
// instances reach this instance's clients.
func (h *ChatHub) StartWiring(ctx context.Context, n *Notifier) error {
	if err := n.StartChatSubscriber(ctx, func(channel, payload string) {
		var conversationID uint
		var eventType string

		if _, err := fmt.Sscanf(channel, "chat:conv:%d", &conversationID); err == nil {
			eventType = "message"
		} else if _, err := fmt.Sscanf(channel, "presence:conv:%d", &conversationID); err == nil {
			eventType = "presence"
		} else {
			log.Printf("ChatHub: Invalid channel format: %s", channel)
			return
		}

		var event ChatEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Printf("ChatHub: Failed to parse event from channel %s: %v", channel, err)
			return
		}
		if event.Type == "" {
			event.Type = eventType
		}
		event.ConversationID = conversationID

		h.BroadcastToConversation(conversationID, event)
	}); err != nil {
		return err
	}

	return n.StartListSubscriber(ctx, func(channel, payload string) {
		if !strings.HasPrefix(channel, "chatlist:user:") {
			log.Printf("ChatHub: Invalid list channel: %s", channel)
			return
		}
		var userID uint
		if _, err := fmt.Sscanf(channel, "chatlist:user:%d", &userID); err != nil {
			log.Printf("ChatHub: Invalid list channel: %s", channel)
			return
		}

		var event ChatEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Printf("ChatHub: Failed to parse event from channel %s: %v", channel, err)
			return
		}
		if event.Type == "" {
			event.Type = "conversations"
		}
		h.BroadcastToUser(userID, event)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *ChatHub) Shutdown(_ context.Context) error {
	if h.presence != nil {
		h.presence.Stop()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}

	observability.ActiveWebSockets.Sub(float64(h.totalConns))
	h.rooms = make(map[uint]map[uint]struct{})
	h.userRooms = make(map[uint]map[uint]struct{})
	h.userConns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0

	return nil
}
