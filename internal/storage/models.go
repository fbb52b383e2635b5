package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrPersist wraps any failure to durably write the cache. Callers of Put
// must be able to distinguish it, since silently losing the seeded essential
// data would break the offline guarantee.
var ErrPersist = errors.New("persist failed")

// Canonical cache keys seeded at every startup.
const (
	KeyWeather      = "weather"
	KeyMarketPrices = "marketPrices"
	KeyFarmingTips  = "farmingTips"
)

// CacheEntry is one durable key/value pair. Value is the JSON encoding of a
// typed snapshot; writing an existing key fully replaces it.
type CacheEntry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Session is a persisted conversation session.
type Session struct {
	ID        string
	Language  string
	CreatedAt time.Time
}

// Turn is one message in a session's log. Turns are append-only and ordered
// by Seq within their session.
type Turn struct {
	ID          string
	SessionID   string
	Seq         int
	Text        string
	IsAssistant bool
	CreatedAt   time.Time
}
