package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/price-ingest/publisher"
	"github.com/radieske/updown-bet-platform-poc/pkg/contracts/events"
)

// WSClient representa um cliente WebSocket responsável por consumir amostras
// de preço do feed e publicar as atualizações recebidas em um tópico Kafka.
type WSClient struct {
	URL       string                    // URL do endpoint WebSocket do feed
	Log       *zap.Logger               // Logger estruturado
	Publisher *publisher.KafkaPublisher // Publisher Kafka para envio dos preços
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar automaticamente com backoff.
func (c *WSClient) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		default:
			if err := c.connectAndListen(ctx); err != nil {
				c.Log.Warn("connection closed", zap.Error(err))
				time.Sleep(3 * time.Second) // Aguarda antes de tentar reconectar
			}
		}
	}
}

// connectAndListen estabelece a conexão WebSocket e processa mensagens recebidas.
// Cada amostra válida é publicada no Kafka; amostras com preço zero são descartadas.
func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to price feed WS", zap.String("url", c.URL))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			c.Log.Error("read message failed", zap.Error(err))
			return err
		}

		var update events.PriceUpdate
		if err := json.Unmarshal(message, &update); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			continue
		}
		if update.Reference == "" || update.Price == 0 {
			c.Log.Warn("discarding degenerate sample", zap.String("reference", update.Reference))
			continue
		}

		// Publica a amostra recebida no Kafka
		if err := c.Publisher.Publish(ctx, update); err != nil {
			c.Log.Error("failed to publish to Kafka", zap.Error(err))
		}
	}
}
