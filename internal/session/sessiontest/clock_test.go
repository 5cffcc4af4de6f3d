// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sessiontest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_FiresInOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	var got []string
	c.Every(3*time.Second, func() { got = append(got, "slow@"+c.Now().Sub(start).String()) })
	c.Every(2*time.Second, func() { got = append(got, "fast@"+c.Now().Sub(start).String()) })

	c.Advance(6 * time.Second)

	assert.Equal(t, []string{"fast@2s", "slow@3s", "fast@4s", "slow@6s", "fast@6s"}, got)
	assert.Equal(t, start.Add(6*time.Second), c.Now())
}

func TestFakeClock_StopInsideCallback(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))

	fired := 0
	var stop func()
	timer := c.Every(time.Second, func() {
		fired++
		if fired == 2 {
			stop()
		}
	})
	stop = timer.Stop

	c.Advance(10 * time.Second)
	assert.Equal(t, 2, fired)
	assert.Zero(t, c.ActiveTimers())

	timer.Stop()
}

func TestFakeClock_TimerCreatedDuringAdvance(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))

	inner := 0
	c.Every(5*time.Second, func() {
		c.Every(time.Second, func() { inner++ })
	})

	c.Advance(7 * time.Second)
	assert.Equal(t, 2, inner, "timer armed at 5s fires at 6s and 7s")
	assert.Equal(t, 2, c.ActiveTimers())
}

func TestFakeClock_AdvanceToPastIsNoop(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewFakeClock(start)
	c.AdvanceTo(start.Add(-time.Minute))
	assert.Equal(t, start, c.Now())
}
