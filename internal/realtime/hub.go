// Package realtime provides an in-process publish/subscribe hub for live
// message delivery. Subscriptions are scoped resources: every exit path
// (explicit cancel, context expiry, hub shutdown) releases the
// subscription before anything else can leak it.
package realtime

import (
	"context"
	"sync"

	"github.com/avolkov/taskboard/internal/models"
	"go.uber.org/zap"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind is dropped rather than allowed to block publishers.
const subscriberBuffer = 16

type subscriber struct {
	topic string
	ch    chan models.Message
	once  sync.Once
}

// Hub fans committed messages out to live topic subscribers.
type Hub struct {
	log *zap.Logger

	mu     sync.Mutex
	topics map[string]map[*subscriber]struct{}
	closed bool
}

// NewHub constructs an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:    log,
		topics: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers a listener on a topic and returns its receive
// channel plus a cancel function. The channel is closed when the
// subscription ends, whether by the cancel function, the context or hub
// shutdown. Cancel is idempotent.
func (h *Hub) Subscribe(ctx context.Context, topic string) (<-chan models.Message, func()) {
	sub := &subscriber{topic: topic, ch: make(chan models.Message, subscriberBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() { h.remove(sub) }

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return sub.ch, cancel
}

// Publish delivers a message to every subscriber of the topic without
// blocking. Subscribers whose buffers are full are dropped; correctness
// does not depend on the live channel because clients re-sort fetched
// threads by creation time anyway.
func (h *Hub) Publish(topic string, msg models.Message) {
	h.mu.Lock()
	var slow []*subscriber
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- msg:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range slow {
		h.log.Warn("dropping slow realtime subscriber", zap.String("topic", topic))
		h.remove(sub)
	}
}

// Close drops every subscription. Further subscribes return a closed
// channel.
func (h *Hub) Close() {
	h.mu.Lock()
	topics := h.topics
	h.topics = make(map[string]map[*subscriber]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, subs := range topics {
		for sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
		}
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if subs, ok := h.topics[sub.topic]; ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, sub.topic)
			}
		}
	}
	h.mu.Unlock()

	sub.once.Do(func() { close(sub.ch) })
}
