package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
)

// SurfaceRedisCache 最近曲面的读缓存，减轻热点查询对 MySQL 的压力
type SurfaceRedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSurfaceRedisCache(client redis.UniversalClient) *SurfaceRedisCache {
	return &SurfaceRedisCache{
		client: client,
		prefix: "volsurface:surface:",
		ttl:    time.Hour,
	}
}

func (c *SurfaceRedisCache) Save(ctx context.Context, record *domain.SurfaceRecord) error {
	if record == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal surface record: %w", err)
	}
	if err := c.client.Set(ctx, c.key(record.ID), data, c.ttl).Err(); err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+"latest", data, c.ttl).Err()
}

func (c *SurfaceRedisCache) Get(ctx context.Context, id string) (*domain.SurfaceRecord, error) {
	if id == "" {
		return nil, nil
	}
	return c.load(ctx, c.key(id))
}

func (c *SurfaceRedisCache) GetLatest(ctx context.Context) (*domain.SurfaceRecord, error) {
	return c.load(ctx, c.prefix+"latest")
}

func (c *SurfaceRedisCache) load(ctx context.Context, key string) (*domain.SurfaceRecord, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surface from redis: %w", err)
	}
	var record domain.SurfaceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal surface record: %w", err)
	}
	return &record, nil
}

func (c *SurfaceRedisCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}
