package events

import "time"

// Evento publicado no tópico "price_updates"
// Price é o preço em unidades inteiras mínimas da moeda de cotação
type PriceUpdate struct {
	Reference  string    `json:"reference"` // ex: "SOL-USD"
	Price      uint64    `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
	Source     string    `json:"source"`   // "price-feed-simulator"
	Sequence   uint64    `json:"sequence"` // incrementado a cada amostra
}
