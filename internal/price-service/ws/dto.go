package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Reference: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type      string `json:"type"`      // subscribe | unsubscribe | ping
	Reference string `json:"reference"` // requerido em subscribe/unsubscribe
}

// PriceUpdate representa uma atualização de preço enviada para clientes WebSocket
type PriceUpdate struct {
	Reference string      `json:"reference"`
	Payload   interface{} `json:"payload"`
}
