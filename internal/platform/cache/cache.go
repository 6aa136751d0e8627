// Package cache keeps rendered board views in Redis so repeated board loads
// skip the four queries a view needs. Entries are evicted after every
// committed write that can change a view; the TTL bounds staleness for
// anything that slips through.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/taskify/taskify-api/internal/config"
	"github.com/taskify/taskify-api/internal/domain"
)

// NewRedisClient connects to the server in cfg and verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// BoardCache caches board views by board id. A nil *BoardCache, or one
// without a client, is a valid cache that never hits.
type BoardCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewBoardCache creates a BoardCache. A zero ttl disables writes.
func NewBoardCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *BoardCache {
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardCache{
		redis:  client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "board_cache")),
	}
}

// Get returns the cached view of boardID. Redis failures and undecodable
// entries count as misses.
func (c *BoardCache) Get(ctx context.Context, boardID uuid.UUID) (*domain.BoardView, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	key := boardKey(boardID)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("board cache read failed",
				slog.String("board_id", boardID.String()),
				slog.String("error", err.Error()))
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}

	var view domain.BoardView
	if err := json.Unmarshal(data, &view); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return &view, true
}

// Set stores view until the TTL expires or it is evicted.
func (c *BoardCache) Set(ctx context.Context, view *domain.BoardView) {
	if c == nil || c.redis == nil || c.ttl == 0 || view == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, boardKey(view.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("board cache write failed",
			slog.String("board_id", view.ID.String()),
			slog.String("error", err.Error()))
	}
}

// Evict drops the cached views of boardIDs.
func (c *BoardCache) Evict(ctx context.Context, boardIDs ...uuid.UUID) {
	if c == nil || c.redis == nil || len(boardIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(boardIDs))
	for _, id := range boardIDs {
		keys = append(keys, boardKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("board cache eviction failed",
			slog.Int("boards", len(keys)),
			slog.String("error", err.Error()))
	}
}

func boardKey(id uuid.UUID) string {
	return "board:view:" + id.String()
}
