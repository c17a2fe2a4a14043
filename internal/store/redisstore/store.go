package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mythchat/mythchat/internal/ratelimit"
)

const (
	guestSessionsPrefix = "mythchat:sessions:"
	rateLimitPrefix     = "mythchat:rate_limit:"
)

// Store wraps the redis client for the two browser-scoped concerns that
// moved server-side: per-device guest session lists and rate-limit records.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// Get implements the guest-session KV: a missing key is (,"", false, nil).
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, guestSessionsPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, guestSessionsPrefix+key, value, ttl).Err()
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, guestSessionsPrefix+key).Err()
}

// GetRecord implements ratelimit.Store.
func (s *Store) GetRecord(ctx context.Context, key string) (*ratelimit.Record, error) {
	v, err := s.rdb.Get(ctx, rateLimitPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec ratelimit.Record
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		// corrupted record reads as absent; the limiter starts a fresh window
		return nil, nil
	}
	return &rec, nil
}

// SetRecord implements ratelimit.Store.
func (s *Store) SetRecord(ctx context.Context, key string, rec *ratelimit.Record, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, rateLimitPrefix+key, b, ttl).Err()
}
