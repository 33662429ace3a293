package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Subscription is one endpoint's membership in a group. Messages arrive on
// C in publish order. The channel is closed when the subscription is
// cancelled or force-closed for falling behind; after a close, ok==false
// on receive is the only signal — no further messages follow.
type Subscription struct {
	id    string
	group string

	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// ID returns the unique subscription identifier. Participant endpoints use
// it as their channel identity in fan-in messages.
func (s *Subscription) ID() string {
	return s.id
}

// Group returns the group this subscription belongs to.
func (s *Subscription) Group() string {
	return s.group
}

// C is the receive channel for the subscription.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// send enqueues without blocking. Returns false when the subscriber is
// closed or its buffer is full.
func (s *Subscription) send(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// close marks the subscription dead and closes its channel. Safe to call
// more than once.
func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Broker is the in-process pub/sub hub for live meeting traffic. One Broker
// instance serves the whole process; groups are created on first subscribe
// and vanish with their last subscriber.
type Broker struct {
	buffer int
	logger *slog.Logger

	mu     sync.RWMutex
	groups map[string]map[string]*Subscription
}

// NewBroker creates a broker whose subscriptions buffer up to bufferSize
// undelivered messages each.
func NewBroker(bufferSize int, logger *slog.Logger) *Broker {
	return &Broker{
		buffer: bufferSize,
		logger: logger.With("component", "events.broker"),
		groups: make(map[string]map[string]*Subscription),
	}
}

// Subscribe joins a group and returns the new subscription.
func (b *Broker) Subscribe(group string) *Subscription {
	sub := &Subscription{
		id:    uuid.New().String(),
		group: group,
		ch:    make(chan []byte, b.buffer),
	}

	b.mu.Lock()
	subs, ok := b.groups[group]
	if !ok {
		subs = make(map[string]*Subscription)
		b.groups[group] = subs
	}
	subs[sub.id] = sub
	b.mu.Unlock()

	return sub
}

// Unsubscribe leaves the group and closes the subscription's channel.
// Idempotent; unsubscribing a force-closed subscription is fine.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.remove(sub)
	sub.close()
}

// Publish marshals the payload and delivers it to every current subscriber
// of the group. A subscriber whose buffer is full is force-closed instead
// of blocking the publisher; its endpoint observes the closed channel and
// terminates the connection.
func (b *Broker) Publish(group string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event for group %s: %w", group, err)
	}

	// Snapshot subscribers, then send without holding the lock so a slow
	// close cannot stall concurrent subscribes.
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.groups[group]))
	for _, sub := range b.groups[group] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if !sub.send(data) {
			b.logger.Warn("Dropping subscriber that cannot keep up",
				"group", group, "subscription_id", sub.id)
			b.remove(sub)
			sub.close()
		}
	}
	return nil
}

// SubscriberCount reports the current size of a group.
func (b *Broker) SubscriberCount(group string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups[group])
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.groups[sub.group]
	if !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(b.groups, sub.group)
	}
}
