// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultCacheTTL is the catalog list cache lifetime. Short enough that
// stock numbers never go badly stale, long enough to make tab switches
// instant.
const DefaultCacheTTL = 3 * time.Minute

// cacheEnvelope is the persisted {data, expiry} blob.
type cacheEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Expiry int64           `json:"expiry"` // unix milliseconds
}

// TTLCache stores list responses under composite keys with a TTL.
//
// # Description
//
// Keys follow the layout {resource}_{theaterId}[_p{page}_l{limit}[_s{search}]].
// Entries carry their own expiry in the envelope in addition to Badger's
// key TTL, so a clock change or a restored backup cannot resurrect a
// stale entry unnoticed.
//
// # Thread Safety
//
// Safe for concurrent use; all state lives in the underlying DB.
type TTLCache struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewTTLCache creates a cache over db. A non-positive ttl uses
// DefaultCacheTTL.
func NewTTLCache(db *DB, ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TTLCache{db: db, ttl: ttl, now: time.Now}
}

// Key builds a cache key for a list resource.
//
// # Inputs
//
//   - resource: List kind, e.g. "products".
//   - theaterID: Owning theater.
//   - page, limit: Pagination; both zero for unpaginated lists.
//   - search: Optional search term.
func Key(resource, theaterID string, page, limit int, search string) string {
	var b strings.Builder
	b.WriteString(resource)
	b.WriteByte('_')
	b.WriteString(theaterID)
	if page > 0 || limit > 0 {
		fmt.Fprintf(&b, "_p%d_l%d", page, limit)
		if search != "" {
			b.WriteString("_s")
			b.WriteString(search)
		}
	}
	return b.String()
}

// Get returns the cached payload for key, or ok=false on miss/expiry.
// An expired entry is deleted on read.
func (c *TTLCache) Get(key string) ([]byte, bool, error) {
	raw, found, err := c.db.Get(key)
	if err != nil || !found {
		return nil, false, err
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// A corrupt envelope is treated as a miss, never a crash.
		_ = c.db.DeleteKey(key)
		return nil, false, nil
	}
	if c.now().UnixMilli() >= env.Expiry {
		_ = c.db.DeleteKey(key)
		return nil, false, nil
	}
	return env.Data, true, nil
}

// Set stores payload under key with the cache TTL.
func (c *TTLCache) Set(key string, payload []byte) error {
	env := cacheEnvelope{
		Data:   payload,
		Expiry: c.now().Add(c.ttl).UnixMilli(),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}
	return c.db.SetWithTTL(key, raw, c.ttl)
}

// Invalidate removes one key.
func (c *TTLCache) Invalidate(key string) error {
	return c.db.DeleteKey(key)
}

// InvalidatePattern removes every key with the given prefix and returns
// how many were removed. Used by the order-cancel fan-out to clear all
// variants (pages, searches) of a resource at once.
func (c *TTLCache) InvalidatePattern(prefix string) (int, error) {
	return c.db.DeletePrefix(prefix)
}
