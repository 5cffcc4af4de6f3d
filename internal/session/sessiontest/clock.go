// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sessiontest provides a deterministic clock for session tests.
package sessiontest

import (
	"sync"
	"time"

	"github.com/studentconnect/studentconnect-tui/internal/session"
)

// FakeClock is a manually advanced session.Clock. Timer callbacks run
// synchronously inside Advance, in firing-time order, without the clock's
// lock held, so callbacks may create or stop timers.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	nextID int
}

var _ session.Clock = (*FakeClock)(nil)

// NewFakeClock creates a clock reading start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

type fakeTimer struct {
	clock   *FakeClock
	id      int
	next    time.Time
	period  time.Duration
	fn      func()
	stopped bool
}

// Stop cancels the timer. Stopping twice is harmless.
func (t *fakeTimer) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	t.stopped = true
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i:i], c.timers[i+1:]...)
			break
		}
	}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Every registers a repeating timer first due at Now()+d.
func (c *FakeClock) Every(d time.Duration, fn func()) session.Timer {
	if d <= 0 {
		panic("sessiontest: non-positive interval")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, id: c.nextID, next: c.now.Add(d), period: d, fn: fn}
	c.nextID++
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, firing every timer that comes due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		due := c.earliestLocked(target)
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.next
		due.next = due.next.Add(due.period)
		fn := due.fn
		c.mu.Unlock()

		fn()
	}
}

// AdvanceTo moves time forward to t. Times in the past are ignored.
func (c *FakeClock) AdvanceTo(t time.Time) {
	d := t.Sub(c.Now())
	if d > 0 {
		c.Advance(d)
	}
}

func (c *FakeClock) earliestLocked(target time.Time) *fakeTimer {
	var best *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.next.After(target) {
			continue
		}
		if best == nil || t.next.Before(best.next) || (t.next.Equal(best.next) && t.id < best.id) {
			best = t
		}
	}
	return best
}

// ActiveTimers reports how many timers are still armed.
func (c *FakeClock) ActiveTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
