package custodian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cdto "github.com/radieske/updown-bet-platform-poc/internal/round-service/custodian/dto"
)

// Client fala com o wallet-service, o custodiante externo do token
// TransferIn move fundos da carteira do usuário para a custódia da
// plataforma; TransferOut faz o caminho inverso
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) TransferIn(ctx context.Context, userID string, amount uint64, externalRef string) error {
	return c.post(ctx, "/wallet/debit", cdto.TransferRequest{UserID: userID, Amount: amount, ExternalRef: externalRef})
}

func (c *Client) TransferOut(ctx context.Context, userID string, amount uint64, externalRef string) error {
	return c.post(ctx, "/wallet/credit", cdto.TransferRequest{UserID: userID, Amount: amount, ExternalRef: externalRef})
}

func (c *Client) post(ctx context.Context, path string, payload cdto.TransferRequest) error {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("custodian %s http %d", path, res.StatusCode)
	}
	return nil
}
