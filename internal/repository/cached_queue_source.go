package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-dashboard/internal/domain"
)

// SnapshotCache is the subset of the go-redis client the cache needs.
type SnapshotCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedQueueSource stores snapshots from another source in Redis. Cache
// failures are logged and fall through to the wrapped source.
type CachedQueueSource struct {
	next   QueueSource
	cache  SnapshotCache
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedQueueSource wraps next with a Redis snapshot cache.
func NewCachedQueueSource(next QueueSource, cache SnapshotCache, key string, ttl time.Duration, logger *zap.Logger) *CachedQueueSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedQueueSource{next: next, cache: cache, key: key, ttl: ttl, logger: logger}
}

func (s *CachedQueueSource) Snapshot(ctx context.Context) ([]domain.Queue, error) {
	raw, err := s.cache.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		queues, decodeErr := DecodeSnapshot(raw)
		if decodeErr == nil {
			return queues, nil
		}
		s.logger.Warn("discarding undecodable cached snapshot", zap.String("key", s.key), zap.Error(decodeErr))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("snapshot cache read failed", zap.String("key", s.key), zap.Error(err))
	}

	queues, err := s.next.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(queues)
	if err != nil {
		s.logger.Warn("encode snapshot for cache", zap.Error(err))
		return queues, nil
	}
	if err := s.cache.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.String("key", s.key), zap.Error(err))
	}
	return queues, nil
}

// Invalidate drops the cached snapshot so the next read hits the source.
func (s *CachedQueueSource) Invalidate(ctx context.Context) error {
	return s.cache.Del(ctx, s.key).Err()
}
