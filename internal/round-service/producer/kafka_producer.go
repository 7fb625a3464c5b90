package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/updown-bet-platform-poc/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ciclo de vida do motor de rodadas
// Um writer por tópico, criados no main do serviço
type KafkaPublisher struct {
	RoundOpened     *kafka.Writer
	RoundClosed     *kafka.Writer
	WagerPlaced     *kafka.Writer
	WinningsClaimed *kafka.Writer
}

func (p *KafkaPublisher) PublishRoundOpened(ctx context.Context, e events.RoundOpened) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return write(ctx, p.RoundOpened, strconv.FormatUint(e.RoundIndex, 10), e)
}

func (p *KafkaPublisher) PublishRoundClosed(ctx context.Context, e events.RoundClosed) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return write(ctx, p.RoundClosed, strconv.FormatUint(e.RoundIndex, 10), e)
}

func (p *KafkaPublisher) PublishWagerPlaced(ctx context.Context, e events.WagerPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return write(ctx, p.WagerPlaced, e.UserID, e)
}

func (p *KafkaPublisher) PublishWinningsClaimed(ctx context.Context, e events.WinningsClaimed) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return write(ctx, p.WinningsClaimed, e.Claimant, e)
}

func write(ctx context.Context, w *kafka.Writer, key string, v any) error {
	b, _ := json.Marshal(v)
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}
