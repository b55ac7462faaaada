// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// bumpPrefix is the bump file name prefix; the theater id follows it.
const bumpPrefix = "stock_updated_"

// BumpPath returns the bump file path for a theater.
func BumpPath(dir, theaterID string) string {
	return filepath.Join(dir, bumpPrefix+theaterID)
}

// WriteBump records a stock-affecting change durably.
//
// The file holds a millisecond timestamp. Other kiosk processes on the
// machine watch the directory and refresh when it changes; this process
// already heard about the change on the bus.
func WriteBump(dir, theaterID string, now time.Time) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create bump directory: %w", err)
	}
	payload := strconv.FormatInt(now.UnixMilli(), 10)
	if err := os.WriteFile(BumpPath(dir, theaterID), []byte(payload), 0640); err != nil {
		return fmt.Errorf("write stock bump: %w", err)
	}
	return nil
}

// ReadBump returns the last recorded bump time, or the zero time when
// no bump was ever written.
func ReadBump(dir, theaterID string) (time.Time, error) {
	raw, err := os.ReadFile(BumpPath(dir, theaterID))
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read stock bump: %w", err)
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stock bump: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// BumpWatcher converts external bump file writes into bus events.
//
// # Description
//
// Watches the bump directory with fsnotify. A write or create of a
// stock_updated_* file publishes StockUpdated for that theater with
// the timestamp the file carries. Writes from this process arrive here
// too; subscribers must tolerate the duplicate.
//
// # Limitations
//
// Directory watches do not survive the directory being deleted and
// recreated. The kiosk owns the directory, so that does not happen in
// practice.
type BumpWatcher struct {
	dir     string
	bus     *Bus
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewBumpWatcher starts watching dir. Close releases the watch.
func NewBumpWatcher(dir string, bus *Bus, logger *slog.Logger) (*BumpWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create bump directory: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &BumpWatcher{
		dir:     dir,
		bus:     bus,
		logger:  logger,
		watcher: fsw,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *BumpWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *BumpWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.HasPrefix(name, bumpPrefix) {
				continue
			}
			theaterID := strings.TrimPrefix(name, bumpPrefix)
			ts, err := ReadBump(w.dir, theaterID)
			if err != nil {
				w.logger.Warn("unreadable stock bump", "file", ev.Name, "error", err)
				continue
			}
			w.bus.Publish(Event{
				Type:      StockUpdated,
				TheaterID: theaterID,
				Source:    "bump-watcher",
				Timestamp: ts,
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("bump watcher error", "error", err)
		}
	}
}
