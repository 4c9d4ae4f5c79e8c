// Package cache keeps recent raw model responses keyed by the conversation
// that produced them, so a repeated round with identical context skips the
// backend call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/snow-ghost/advisor/core"
)

// Key identifies one conversation state.
type Key string

// KeyFor hashes the ordered turn list into a cache key.
func KeyFor(turns []core.DialogTurn) Key {
	h := sha256.New()
	for _, turn := range turns {
		h.Write([]byte(turn.Role))
		h.Write([]byte{0})
		h.Write([]byte(turn.Content))
		h.Write([]byte{0})
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

type entry struct {
	raw      string
	storedAt time.Time
}

// ResponseCache is an LRU cache of raw model responses with TTL expiry.
type ResponseCache struct {
	lru *lru.Cache[Key, entry]
	ttl time.Duration
	now func() time.Time
}

// New creates a cache of at most size entries, each valid for ttl.
func New(size int, ttl time.Duration) (*ResponseCache, error) {
	c, err := lru.New[Key, entry](size)
	if err != nil {
		return nil, err
	}
	return &ResponseCache{lru: c, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached raw response for key if present and fresh.
func (c *ResponseCache) Get(key Key) (string, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		c.lru.Remove(key)
		return "", false
	}
	return e.raw, true
}

// Put stores the raw response for key.
func (c *ResponseCache) Put(key Key, raw string) {
	c.lru.Add(key, entry{raw: raw, storedAt: c.now()})
}

// Len reports the number of cached entries.
func (c *ResponseCache) Len() int {
	return c.lru.Len()
}
