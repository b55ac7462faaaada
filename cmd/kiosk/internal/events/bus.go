// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package events carries the cross-view notifications: an in-process
// bus for this kiosk and a durable bump file so sibling processes on
// the same machine notice stock changes too.
package events

import (
	"sync"
	"time"
)

// Type is the event kind.
type Type string

const (
	// OrderUpdated fires after an order's status changed locally.
	OrderUpdated Type = "orderUpdated"

	// StockUpdated fires after an action changed server-side stock.
	StockUpdated Type = "stockUpdated"
)

// Event is one bus notification.
type Event struct {
	Type      Type
	TheaterID string

	// Source names the component that published, for log correlation.
	Source string

	Timestamp time.Time
}

// Bus is a synchronous publish/subscribe fan-out.
//
// # Description
//
// Publish runs every subscriber inline, in registration order.
// Publishers must update their own local state first, so subscribers
// that re-fetch observe consistent server state.
//
// # Thread Safety
//
// Safe for concurrent use. Subscribers must not Publish from inside a
// callback.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]func(Event){}}
}

// Subscribe registers a callback for every published event. The
// returned function unsubscribes.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers the event to every subscriber. A zero timestamp is
// filled with the current time.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	// Map order is random; deliver in registration order.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, b.subs[id])
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
