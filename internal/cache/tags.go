// Package cache keeps read-mostly catalog data in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/internal/models"
)

const tagsKey = "catalog:tags"

// TagCache stores the full tag list under one key.
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTagCache(client *redis.Client, ttl time.Duration) *TagCache {
	return &TagCache{client: client, ttl: ttl}
}

// Get returns the cached tags; ok is false on a cache miss.
func (c *TagCache) Get(ctx context.Context) (tags []models.Tag, ok bool, err error) {
	raw, err := c.client.Get(ctx, tagsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tag cache: %w", err)
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, fmt.Errorf("failed to decode tag cache: %w", err)
	}
	return tags, true, nil
}

func (c *TagCache) Set(ctx context.Context, tags []models.Tag) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	if err := c.client.Set(ctx, tagsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tag cache: %w", err)
	}
	return nil
}

func (c *TagCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, tagsKey).Err()
}
