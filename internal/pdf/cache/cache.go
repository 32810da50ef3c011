// Package cache stores imposed sheets keyed by source content and layout.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a store for serialized sheets.
type Cache interface {
	// Get returns the cached bytes for key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores data under key
	Put(ctx context.Context, key string, data []byte) error
	// Stats reports hit/miss counters for this process
	Stats() Stats
	// Close releases backend resources
	Close() error
}

// Stats provides statistics about cache performance
type Stats struct {
	Backend  string  `json:"backend"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}

// Key derives the cache key for a source document imposed with a layout.
// layoutDigest must cover the whole slot table, not just the layout name.
func Key(source []byte, layoutDigest string) string {
	sum := sha256.Sum256(source)
	return "minibook:" + layoutDigest + ":" + hex.EncodeToString(sum[:])
}

// Options selects and configures a backend.
type Options struct {
	Capacity  int           // LRU entries; 0 disables the in-memory cache
	TTL       time.Duration // 0 keeps entries until evicted
	RedisAddr string        // when set, Redis is used instead of memory
}

// New returns the backend selected by opts, or nil when caching is disabled.
func New(opts Options) (Cache, error) {
	if opts.RedisAddr != "" {
		r, err := NewRedis(opts.RedisAddr, opts.TTL)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	if opts.Capacity <= 0 {
		return nil, nil
	}
	return NewLRU(opts.Capacity, opts.TTL), nil
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
