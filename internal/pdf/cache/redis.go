package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores sheets in a shared Redis instance so several servers can reuse
// each other's results.
type Redis struct {
	client *redis.Client
	addr   string
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to addr and verifies the connection with PING.
func NewRedis(addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Redis{client: client, addr: addr, ttl: ttl}, nil
}

// Get fetches a sheet
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	r.hits.Add(1)
	return data, true, nil
}

// Put stores a sheet with the configured TTL
func (r *Redis) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Stats returns the counters observed by this process
func (r *Redis) Stats() Stats {
	hits, misses := r.hits.Load(), r.misses.Load()
	return Stats{
		Backend: "redis " + r.addr,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
	}
}

// Close closes the client
func (r *Redis) Close() error {
	return r.client.Close()
}
