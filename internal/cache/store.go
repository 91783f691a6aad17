// Package cache keeps translation and detection results in Redis so repeated
// inputs skip the rate-limited service.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix   = "deeplweb:"
	hitsKey     = keyPrefix + "stats:hits"
	missesKey   = keyPrefix + "stats:misses"
	keySeparate = "\x00"
)

// Stats are the hit and miss counters of a store.
type Stats struct {
	Hits   int64
	Misses int64
}

// Store is a JSON value store on Redis. Values live in the cache client,
// counters in the stats client. Concurrent misses on the same key through
// one store are collapsed into a single computation.
type Store struct {
	client rueidis.Client
	stats  rueidis.Client
	ttl    time.Duration
	flight singleflight.Group
	logger *zap.Logger
}

// NewStore creates a store whose entries expire after ttl.
func NewStore(client, stats rueidis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		stats:  stats,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}
}

// Key derives a fixed-length key from kind and the parts identifying a value.
func Key(kind string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, keySeparate)))
	return keyPrefix + kind + ":" + hex.EncodeToString(sum[:])
}

// Get loads the value stored under key into v. It reports false when there
// is no such value.
func (s *Store) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			s.count(ctx, missesKey)
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	s.count(ctx, hitsKey)
	return true, nil
}

// Set stores v under key.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(data)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// Stats returns the hit and miss counters.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	values, err := s.stats.Do(ctx, s.stats.B().Mget().Key(hitsKey, missesKey).Build()).ToArray()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}

	var stats Stats
	for i, value := range values {
		n, err := value.AsInt64()
		if err != nil && !rueidis.IsRedisNil(err) {
			return Stats{}, fmt.Errorf("failed to read stats: %w", err)
		}

		if i == 0 {
			stats.Hits = n
		} else {
			stats.Misses = n
		}
	}

	return stats, nil
}

func (s *Store) count(ctx context.Context, key string) {
	err := s.stats.Do(ctx, s.stats.B().Incr().Key(key).Build()).Error()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("Failed to update cache stats", zap.String("key", key), zap.Error(err))
	}
}
