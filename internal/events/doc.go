// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events provides the process-wide event bus for StudentConnect.
//
// The bus is synchronous and same-goroutine: Publish calls every handler
// subscribed to the event's topic before returning. There is no queuing
// and no delivery across processes; cross-process storage changes are
// turned into local "storage" events by the storage watcher.
//
// # Usage
//
//	bus := events.NewBus()
//	unsubscribe := bus.OnAuthStateChanged(func() {
//	    header.Refresh()
//	})
//	defer unsubscribe()
//
//	bus.PublishAuthStateChanged()
package events
