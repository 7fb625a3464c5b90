package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyRead(reference string) string { return "price:read:" + reference }

func (c *Cache) GetPrice(ctx context.Context, reference string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyRead(reference)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetPrice(ctx context.Context, reference string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyRead(reference), b, ttl).Err()
}
