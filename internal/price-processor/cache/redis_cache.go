package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/oracle"
	"github.com/radieske/updown-bet-platform-poc/pkg/contracts/events"
)

// RedisCache mantém a amostra corrente de cada feed no Redis
// A chave é a mesma lida pelo oráculo do motor de rodadas
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetCurrent armazena a amostra corrente do feed no Redis com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, e events.PriceUpdate) error {
	s := oracle.Sample{Reference: e.Reference, Price: e.Price, ObservedAt: e.ObservedAt}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, oracle.CurrentKey(e.Reference), b, r.TTL).Err()
}
