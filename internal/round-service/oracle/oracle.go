package oracle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

// Sample é a amostra corrente de preço mantida no Redis pelo price-processor
type Sample struct {
	Reference  string    `json:"reference"`
	Price      uint64    `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// CurrentKey gera a chave Redis da amostra corrente de um feed
func CurrentKey(reference string) string { return "price:current:" + reference }

// Oracle lê a amostra corrente do feed configurado
// EnforceStaleness desligado ignora a idade da amostra (só preço zero falha)
type Oracle struct {
	Rdb              *redis.Client
	EnforceStaleness bool
}

func New(r *redis.Client, enforceStaleness bool) *Oracle {
	return &Oracle{Rdb: r, EnforceStaleness: enforceStaleness}
}

// SamplePrice retorna o preço corrente do feed, validado contra zero e staleness
func (o *Oracle) SamplePrice(ctx context.Context, reference string, tolerance time.Duration) (uint64, error) {
	b, err := o.Rdb.Get(ctx, CurrentKey(reference)).Bytes()
	if err == redis.Nil {
		return 0, engine.ErrStalePrice // feed nunca publicou: trata como amostra velha
	}
	if err != nil {
		return 0, err
	}

	var s Sample
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, err
	}

	if err := Validate(s, time.Now(), tolerance, o.EnforceStaleness); err != nil {
		return 0, err
	}
	return s.Price, nil
}

// Validate aplica as regras de aceitação de uma amostra
func Validate(s Sample, now time.Time, tolerance time.Duration, enforceStaleness bool) error {
	if s.Price == 0 {
		return engine.ErrZeroPrice
	}
	if enforceStaleness && now.Sub(s.ObservedAt) > tolerance {
		return engine.ErrStalePrice
	}
	return nil
}
