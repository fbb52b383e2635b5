package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrivaani/agrivaani/internal/farm"
)

// Put stores value under key, fully replacing any previous value. The write
// is committed before Put returns; a read in the same process immediately
// after a successful Put sees the new value. Failures wrap ErrPersist.
func (s *Store) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrPersist, key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrPersist, key, err)
	}
	return nil
}

// Get returns the raw cached value for key. Absence is an expected outcome,
// not an error: the second return is false and the value nil.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM cache WHERE key = ?", key).Scan(&value)
	if err != nil {
		return nil, false
	}
	return json.RawMessage(value), true
}

// Entries returns every cache entry, most recently written first.
func (s *Store) Entries() ([]CacheEntry, error) {
	rows, err := s.db.Query("SELECT key, value, updated_at FROM cache ORDER BY updated_at DESC, key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		var value, updatedAt string
		if err := rows.Scan(&e.Key, &value, &updatedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		e.Value = []byte(value)
		e.UpdatedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Seed writes the three canonical keys with their default payloads. It runs
// unconditionally at every startup so the assistant and the dashboard tabs
// always have something to show, even on a first offline run. Existing
// values for those keys are overwritten.
func (s *Store) Seed() error {
	if err := s.Put(KeyWeather, farm.DefaultWeather()); err != nil {
		return fmt.Errorf("seeding weather: %w", err)
	}
	if err := s.Put(KeyMarketPrices, farm.DefaultMarket()); err != nil {
		return fmt.Errorf("seeding market prices: %w", err)
	}
	if err := s.Put(KeyFarmingTips, farm.DefaultTips()); err != nil {
		return fmt.Errorf("seeding farming tips: %w", err)
	}
	return nil
}

// Weather decodes the cached weather snapshot. A missing or unreadable entry
// or missing fields resolve to the documented defaults, never an error.
func (s *Store) Weather() farm.WeatherSnapshot {
	raw, ok := s.Get(KeyWeather)
	if !ok {
		return farm.DefaultWeather()
	}
	var snap farm.WeatherSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return farm.DefaultWeather()
	}
	return snap.Normalize()
}

// MarketPrices decodes the cached market snapshot with per-commodity
// defaults for anything missing.
func (s *Store) MarketPrices() farm.MarketSnapshot {
	raw, ok := s.Get(KeyMarketPrices)
	if !ok {
		return farm.DefaultMarket()
	}
	var snap farm.MarketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return farm.DefaultMarket()
	}
	return snap.Normalize()
}

// FarmingTips decodes the cached advisory list, falling back to the seed
// tips.
func (s *Store) FarmingTips() []string {
	raw, ok := s.Get(KeyFarmingTips)
	if !ok {
		return farm.DefaultTips()
	}
	var tips []string
	if err := json.Unmarshal(raw, &tips); err != nil || len(tips) == 0 {
		return farm.DefaultTips()
	}
	return tips
}
