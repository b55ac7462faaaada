// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cart

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Persister is the slice of the storage layer the cart needs.
type Persister interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	DeleteKey(key string) error
}

// Snapshot is an immutable view of the cart for pricing and rendering.
type Snapshot struct {
	TheaterID string
	Lines     []Line
}

// TotalItems is the piece count across all lines, for the cart badge.
func (s Snapshot) TotalItems() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Count
	}
	return n
}

// Store holds one theater's cart.
//
// # Description
//
// Every mutation serializes the full line list under the theater's
// durable key before observers run, so a power cut between two edits
// loses at most the in-flight one. Hydration happens in Open; a corrupt
// payload erases the key and starts empty rather than crash.
//
// # Thread Safety
//
// Safe for concurrent use. Observers are called without the lock held
// and must not assume ordering across concurrent mutations.
type Store struct {
	theaterID string
	db        Persister
	logger    *slog.Logger

	mu      sync.Mutex
	lines   []Line
	subs    map[int]func(Snapshot)
	nextSub int
}

// cartKey is the durable key layout.
func cartKey(theaterID string) string {
	return "kioskCart_" + theaterID
}

// Open creates a Store and hydrates it from the durable key.
//
// # Inputs
//
//   - db: Persistence; nil gives a memory-only cart (tests).
//   - theaterID: Owning theater. Required.
//   - logger: Structured logger; nil uses slog.Default().
//
// # Outputs
//
//   - *Store: Hydrated store. Corrupt persisted state is erased, never
//     fatal.
//   - error: Non-nil only when theaterID is empty or the read itself
//     fails.
func Open(db Persister, theaterID string, logger *slog.Logger) (*Store, error) {
	if theaterID == "" {
		return nil, fmt.Errorf("cart: theater id is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		theaterID: theaterID,
		db:        db,
		logger:    logger,
		subs:      map[int]func(Snapshot){},
	}
	if db == nil {
		return s, nil
	}

	raw, found, err := db.Get(cartKey(theaterID))
	if err != nil {
		return nil, fmt.Errorf("cart: hydrate %s: %w", theaterID, err)
	}
	if found {
		if err := json.Unmarshal(raw, &s.lines); err != nil {
			logger.Warn("corrupt persisted cart, starting empty",
				"theater_id", theaterID, "error", err)
			s.lines = nil
			_ = db.DeleteKey(cartKey(theaterID))
		}
	}
	return s, nil
}

// AddItem increments an existing line by one, or inserts the line at
// the end with count 1. The caller gates on the stock engine first; the
// store does not re-check.
func (s *Store) AddItem(line Line) error {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID == line.ID {
			s.lines[i].Count++
			return s.commit()
		}
	}
	line.Count = 1
	s.lines = append(s.lines, line)
	return s.commit()
}

// SetCount sets a line's count. Zero or negative removes the line.
// Setting an unknown id is a no-op.
func (s *Store) SetCount(id string, count int) error {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID != id {
			continue
		}
		if count <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Count = count
		}
		return s.commit()
	}
	s.mu.Unlock()
	return nil
}

// RemoveItem removes a line.
func (s *Store) RemoveItem(id string) error {
	return s.SetCount(id, 0)
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.lines = nil
	return s.commit()
}

// Replace swaps the whole line list, used after a server merge.
func (s *Store) Replace(lines []Line) error {
	s.mu.Lock()
	s.lines = append([]Line(nil), lines...)
	return s.commit()
}

// Snapshot returns an immutable copy of the cart.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		TheaterID: s.theaterID,
		Lines:     append([]Line(nil), s.lines...),
	}
}

// Subscribe registers an observer called after every mutation. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// commit persists the lines and notifies observers. Called with the
// lock held; releases it.
func (s *Store) commit() error {
	snap := Snapshot{
		TheaterID: s.theaterID,
		Lines:     append([]Line(nil), s.lines...),
	}
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	var err error
	if s.db != nil {
		raw, mErr := json.Marshal(snap.Lines)
		if mErr != nil {
			err = fmt.Errorf("cart: marshal: %w", mErr)
		} else if sErr := s.db.Set(cartKey(s.theaterID), raw); sErr != nil {
			err = fmt.Errorf("cart: persist: %w", sErr)
		}
		if err != nil {
			// The in-memory cart stays authoritative; the next
			// successful mutation rewrites the key in full.
			s.logger.Warn("cart persist failed",
				"theater_id", s.theaterID, "error", err)
		}
	}

	for _, fn := range subs {
		fn(snap)
	}
	return err
}
