package summarize

import (
	"context"
	"fmt"

	redisc "github.com/muminalshawaf/book-extractor-sub002/internal/pkg/redis"
	"go.uber.org/zap"
)

const invalidateChannel = "summary:invalidate"

// RedisInvalidator drops the cached copy and broadcasts the change so
// collaborators holding client copies treat them as stale.
type RedisInvalidator struct {
	rc  *redisc.Client
	log *zap.Logger
}

func NewRedisInvalidator(rc *redisc.Client, log *zap.Logger) *RedisInvalidator {
	return &RedisInvalidator{rc: rc, log: log}
}

// CacheKey is the redis key the summary read path caches responses under and
// the write path deletes. Both sides must agree on it for invalidation to
// reach the cached copy.
func CacheKey(bookID string, pageNumber int) string {
	return fmt.Sprintf("bx:summary:%s:%d", bookID, pageNumber)
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, bookID string, pageNumber int) {
	key := CacheKey(bookID, pageNumber)
	if err := r.rc.Del(ctx, key); err != nil {
		r.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
	msg := fmt.Sprintf("%s:%d", bookID, pageNumber)
	if err := r.rc.Publish(ctx, invalidateChannel, msg); err != nil {
		r.log.Warn("invalidation publish failed", zap.String("key", key), zap.Error(err))
	}
}
