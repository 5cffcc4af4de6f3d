// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import "sync"

// =============================================================================
// TOPICS
// =============================================================================

// Topic names a class of events on the bus.
type Topic string

const (
	// AuthStateChanged tells subscribers to re-query authentication state.
	AuthStateChanged Topic = "auth-state-changed"

	// Click is a pointer button press anywhere in the application.
	Click Topic = "click"

	// KeyPress is any keyboard input.
	KeyPress Topic = "keypress"

	// Scroll is a wheel or scroll gesture.
	Scroll Topic = "scroll"

	// PointerMove is pointer motion.
	PointerMove Topic = "pointermove"

	// StorageChanged is a change to the key/value store made by another process.
	StorageChanged Topic = "storage"
)

// ActivityTopics are the four global user-activity signals.
var ActivityTopics = []Topic{Click, KeyPress, Scroll, PointerMove}

// Event is a single message on the bus.
type Event struct {
	Topic Topic
	// Key is the store key for StorageChanged events; empty otherwise.
	Key string
}

// Handler receives events for a topic it subscribed to.
type Handler func(Event)

// =============================================================================
// BUS
// =============================================================================

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous publish/subscribe hub.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Topic][]subscription),
	}
}

// Subscribe registers h for topic and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(topic, id)
		})
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Publish delivers e to every current subscriber of e.Topic, in
// subscription order. Handlers run outside the bus lock, so they may
// subscribe, unsubscribe or publish.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[e.Topic]))
	copy(subs, b.subs[e.Topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// OnAuthStateChanged registers fn to run whenever auth state changes.
func (b *Bus) OnAuthStateChanged(fn func()) func() {
	return b.Subscribe(AuthStateChanged, func(Event) { fn() })
}

// PublishAuthStateChanged signals that authentication state changed.
func (b *Bus) PublishAuthStateChanged() {
	b.Publish(Event{Topic: AuthStateChanged})
}
