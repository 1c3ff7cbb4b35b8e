package notifications

import (
	"context"
	"log"
	"sync"

	"kampus/internal/models"
	"kampus/internal/observability"
)

// MessageLoader re-queries the full ordered message list of a conversation.
type MessageLoader func(ctx context.Context, conversationID uint) ([]*models.Message, error)

// ConversationLoader re-queries a user's conversation list, newest first.
type ConversationLoader func(ctx context.Context, userID uint) ([]*models.Conversation, error)

// MessageFeed is a live view over one conversation's messages. Initial holds
// the snapshot taken at subscribe time; Updates carries a full replacement
// snapshot after every change. Cancel detaches permanently.
type MessageFeed struct {
	Initial []*models.Message
	Updates <-chan []*models.Message
	cancel  func()
}

// Cancel detaches the feed. Safe to call more than once; after it returns no
// further snapshots are delivered and the feed's resources are released.
func (f *MessageFeed) Cancel() { f.cancel() }

// ConversationFeed is a live view over a user's conversation list.
type ConversationFeed struct {
	Initial []*models.Conversation
	Updates <-chan []*models.Conversation
	cancel  func()
}

// Cancel detaches the feed.
func (f *ConversationFeed) Cancel() { f.cancel() }

// FeedBroker turns change signals into fresh snapshots for subscribers. Each
// subscriber gets the current snapshot on subscribe and a re-queried one after
// every signal. Update channels buffer a single snapshot and newer snapshots
// replace undelivered ones, so a slow consumer sees the latest state, not a
// backlog.
type FeedBroker struct {
	loadMessages      MessageLoader
	loadConversations ConversationLoader

	mu        sync.Mutex
	convFeeds map[uint]map[*feedWorker]struct{}
	userFeeds map[uint]map[*feedWorker]struct{}
}

type feedWorker struct {
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (w *feedWorker) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
		// A refresh is already pending; it will pick up this change too.
	}
}

func (w *feedWorker) stop() {
	w.once.Do(func() { close(w.done) })
}

// NewFeedBroker creates a broker over the given snapshot loaders.
func NewFeedBroker(loadMessages MessageLoader, loadConversations ConversationLoader) *FeedBroker {
	return &FeedBroker{
		loadMessages:      loadMessages,
		loadConversations: loadConversations,
		convFeeds:         make(map[uint]map[*feedWorker]struct{}),
		userFeeds:         make(map[uint]map[*feedWorker]struct{}),
	}
}

// SubscribeMessages opens a live feed over a conversation's messages.
func (b *FeedBroker) SubscribeMessages(ctx context.Context, conversationID uint) (*MessageFeed, error) {
	initial, err := b.loadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	observability.FeedSnapshots.WithLabelValues("messages").Inc()

	worker := &feedWorker{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	updates := make(chan []*models.Message, 1)

	b.mu.Lock()
	if b.convFeeds[conversationID] == nil {
		b.convFeeds[conversationID] = make(map[*feedWorker]struct{})
	}
	b.convFeeds[conversationID][worker] = struct{}{}
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-worker.done:
				return
			case <-worker.signal:
				snap, err := b.loadMessages(context.Background(), conversationID)
				if err != nil {
					log.Printf("FeedBroker: message snapshot for conversation %d failed: %v", conversationID, err)
					continue
				}
				observability.FeedSnapshots.WithLabelValues("messages").Inc()
				deliverLatest(updates, snap)
			}
		}
	}()

	return &MessageFeed{
		Initial: initial,
		Updates: updates,
		cancel: func() {
			worker.stop()
			b.mu.Lock()
			if set, ok := b.convFeeds[conversationID]; ok {
				delete(set, worker)
				if len(set) == 0 {
					delete(b.convFeeds, conversationID)
				}
			}
			b.mu.Unlock()
		},
	}, nil
}

// SubscribeConversations opens a live feed over a user's conversation list.
func (b *FeedBroker) SubscribeConversations(ctx context.Context, userID uint) (*ConversationFeed, error) {
	initial, err := b.loadConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	observability.FeedSnapshots.WithLabelValues("conversations").Inc()

	worker := &feedWorker{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	updates := make(chan []*models.Conversation, 1)

	b.mu.Lock()
	if b.userFeeds[userID] == nil {
		b.userFeeds[userID] = make(map[*feedWorker]struct{})
	}
	b.userFeeds[userID][worker] = struct{}{}
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-worker.done:
				return
			case <-worker.signal:
				snap, err := b.loadConversations(context.Background(), userID)
				if err != nil {
					log.Printf("FeedBroker: conversation snapshot for user %d failed: %v", userID, err)
					continue
				}
				observability.FeedSnapshots.WithLabelValues("conversations").Inc()
				deliverLatest(updates, snap)
			}
		}
	}()

	return &ConversationFeed{
		Initial: initial,
		Updates: updates,
		cancel: func() {
			worker.stop()
			b.mu.Lock()
			if set, ok := b.userFeeds[userID]; ok {
				delete(set, worker)
				if len(set) == 0 {
					delete(b.userFeeds, userID)
				}
			}
			b.mu.Unlock()
		},
	}, nil
}

// NotifyConversation signals every message feed on the conversation.
func (b *FeedBroker) NotifyConversation(conversationID uint) {
	b.mu.Lock()
	workers := make([]*feedWorker, 0, len(b.convFeeds[conversationID]))
	for w := range b.convFeeds[conversationID] {
		workers = append(workers, w)
	}
	b.mu.Unlock()

	for _, w := range workers {
		w.notify()
	}
}

// NotifyUser signals every conversation-list feed belonging to the user.
func (b *FeedBroker) NotifyUser(userID uint) {
	b.mu.Lock()
	workers := make([]*feedWorker, 0, len(b.userFeeds[userID]))
	for w := range b.userFeeds[userID] {
		workers = append(workers, w)
	}
	b.mu.Unlock()

	for _, w := range workers {
		w.notify()
	}
}

// deliverLatest replaces any undelivered snapshot with the newer one.
func deliverLatest[T any](ch chan T, snap T) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
