// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/studentconnect/studentconnect-tui/internal/events"
)

// =============================================================================
// CROSS-PROCESS CHANGE WATCHER
// =============================================================================

// DefaultWatchDebounce coalesces bursts of writes (database plus WAL) into one event.
const DefaultWatchDebounce = 150 * time.Millisecond

// Publisher receives storage-changed notifications.
type Publisher interface {
	Publish(e events.Event)
}

// Watcher publishes events.StorageChanged when another process modifies
// the SQLite database file. Writes from this process are reported too;
// subscribers re-read the keys they care about and ignore no-op changes.
type Watcher struct {
	path     string
	pub      Publisher
	log      zerolog.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending time.Time // zero when nothing is pending
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the database at dbPath.
func NewWatcher(dbPath string, pub Publisher, log zerolog.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     dbPath,
		pub:      pub,
		log:      log,
		debounce: debounce,
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching the database directory.
func (w *Watcher) Watch() error {
	// SQLite replaces and recreates the -wal/-shm files, so watch the directory.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return nil
}

// relevant reports whether name is the database or one of its sidecar files.
func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(w.path)
	return strings.HasPrefix(filepath.Base(name), base)
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("storage watcher stopped")
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("storage watcher error")
		}
	}
}

func (w *Watcher) processPending() {
	defer w.wg.Done()

	interval := w.debounce / 3
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if fire {
				w.log.Debug().Str("path", w.path).Msg("storage changed on disk")
				w.pub.Publish(events.Event{Topic: events.StorageChanged})
			}
		}
	}
}

// Close stops watching and waits for the goroutines to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
