// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesSubscribersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(Click, func(Event) { got = append(got, "first") })
	bus.Subscribe(Click, func(Event) { got = append(got, "second") })
	bus.Subscribe(KeyPress, func(Event) { got = append(got, "other-topic") })

	bus.Publish(Event{Topic: Click})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(Scroll, func(Event) { calls++ })
	keep := bus.Subscribe(Scroll, func(Event) {})

	unsubscribe()
	unsubscribe()

	bus.Publish(Event{Topic: Scroll})
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, bus.Subscribers(Scroll))

	keep()
	assert.Equal(t, 0, bus.Subscribers(Scroll))
}

func TestBus_HandlerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(PointerMove, func(Event) {
		calls++
		unsubscribe()
	})

	bus.Publish(Event{Topic: PointerMove})
	bus.Publish(Event{Topic: PointerMove})

	assert.Equal(t, 1, calls)
}

func TestBus_HandlerMayPublish(t *testing.T) {
	bus := NewBus()
	authChanges := 0
	bus.OnAuthStateChanged(func() { authChanges++ })
	bus.Subscribe(StorageChanged, func(e Event) {
		if e.Key == "user" {
			bus.PublishAuthStateChanged()
		}
	})

	bus.Publish(Event{Topic: StorageChanged, Key: "user"})
	bus.Publish(Event{Topic: StorageChanged, Key: "theme"})

	assert.Equal(t, 1, authChanges)
}

func TestBus_ConcurrentSubscribePublish(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsubscribe := bus.Subscribe(Click, func(Event) {})
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(Event{Topic: Click})
		}()
	}
	wg.Wait()

	require.Equal(t, 0, bus.Subscribers(Click))
}
