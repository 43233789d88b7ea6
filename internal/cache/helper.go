package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store is a JSON cache over Redis. A nil Store, or one without a client,
// caches nothing and sends every read to the source.
type Store struct {
	rdb  *redis.Client
	name string
}

// NewStore returns a Store named name, used as the metrics label.
func NewStore(rdb *redis.Client, name string) *Store {
	return &Store{rdb: rdb, name: name}
}

func (s *Store) enabled() bool {
	return s != nil && s.rdb != nil
}

// setIfGeneration stores a value only when the generation counter still
// holds the value read before the source was loaded.
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if current == false then current = "0" end
if current ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.enabled() {
		return false, nil
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on miss it calls fetch, which must populate dest,
// then stores dest with ttl. The store is skipped if key was invalidated while
// fetch ran, so a slow reader never writes back data older than the last write.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func(ctx context.Context) error) error {
	if !s.enabled() {
		return fetch(ctx)
	}

	found, err := s.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(s.name, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed, loading from store",
			slog.String("key", key), slog.String("error", err.Error()))
		return fetch(ctx)
	case found:
		observability.CacheLookups.WithLabelValues(s.name, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(s.name, "miss").Inc()

	gen, err := s.rdb.Get(ctx, generationKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		return fetch(ctx)
	}

	if err := fetch(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(dest)
	if err != nil {
		return err
	}
	keys := []string{key, generationKey(key)}
	if err := setIfGeneration.Run(ctx, s.rdb, keys, gen, b, ttl.Milliseconds()).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache populate failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes key and bumps its generation so in-flight Aside calls
// drop the value they loaded.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if !s.enabled() {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, generationKey(key))
	pipe.Expire(ctx, generationKey(key), generationTTL)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.CacheInvalidations.WithLabelValues(s.name, "error").Inc()
		return err
	}
	observability.CacheInvalidations.WithLabelValues(s.name, "ok").Inc()
	return nil
}
