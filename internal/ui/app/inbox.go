// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// INBOX
// =============================================================================

// inboxMsg carries every message queued since the last delivery.
type inboxMsg []tea.Msg

// inbox moves messages produced on other goroutines (session timers, bus
// handlers, the storage watcher) into the Bubble Tea loop. Producers never
// block; the loop drains everything pending in one message.
type inbox struct {
	mu     sync.Mutex
	msgs   []tea.Msg
	closed bool

	ready chan struct{}
	done  chan struct{}
}

func newInbox() *inbox {
	return &inbox{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// push queues msg. It is safe from any goroutine and drops msg after close.
func (b *inbox) push(msg tea.Msg) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.msgs = append(b.msgs, msg)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// take returns and clears the pending messages.
func (b *inbox) take() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.msgs
	b.msgs = nil
	return msgs
}

// wait returns a command that blocks until messages are pending. Update
// re-arms it after each delivery.
func (b *inbox) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-b.done:
				return nil
			case <-b.ready:
				if msgs := b.take(); len(msgs) > 0 {
					return inboxMsg(msgs)
				}
			}
		}
	}
}

func (b *inbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.msgs = nil
	close(b.done)
}
