package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/types"
)

// CompletionsCache is a TTL-bounded read cache over stored-completion lists.
// It is strictly an optimization: every method degrades to a miss/no-op on
// redis failure and callers must treat the database as the source of truth.
type CompletionsCache interface {
	Get(ctx context.Context, kind types.ContentKind, concernID string) ([]*types.Completion, bool)
	Set(ctx context.Context, kind types.ContentKind, concernID string, completions []*types.Completion)
	Invalidate(ctx context.Context, kind types.ContentKind, concernID string)
	Close() error
}

type completionsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewCompletionsCache(log *logger.Logger) (CompletionsCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 5 * time.Minute
	if v := strings.TrimSpace(os.Getenv("REDIS_COMPLETIONS_TTL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &completionsCache{
		log: log.With("service", "CompletionsCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(kind types.ContentKind, concernID string) string {
	return fmt.Sprintf("completions:%s:%s", kind, concernID)
}

func (c *completionsCache) Get(ctx context.Context, kind types.ContentKind, concernID string) ([]*types.Completion, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(kind, concernID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Cache read failed", "key", cacheKey(kind, concernID), "error", err)
		}
		return nil, false
	}
	var completions []*types.Completion
	if err := json.Unmarshal(raw, &completions); err != nil {
		c.log.Warn("Cache entry unparsable, dropping", "key", cacheKey(kind, concernID), "error", err)
		c.Invalidate(ctx, kind, concernID)
		return nil, false
	}
	return completions, true
}

func (c *completionsCache) Set(ctx context.Context, kind types.ContentKind, concernID string, completions []*types.Completion) {
	raw, err := json.Marshal(completions)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(kind, concernID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "key", cacheKey(kind, concernID), "error", err)
	}
}

func (c *completionsCache) Invalidate(ctx context.Context, kind types.ContentKind, concernID string) {
	if err := c.rdb.Del(ctx, cacheKey(kind, concernID)).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", "key", cacheKey(kind, concernID), "error", err)
	}
}

func (c *completionsCache) Close() error {
	return c.rdb.Close()
}
