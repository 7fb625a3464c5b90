package dto

// Reference identifica um feed de preço disponível
type Reference struct {
	Reference string `json:"reference"`
}

// Price representa uma amostra de preço servida pela API REST
type Price struct {
	Reference  string `json:"reference"`
	Price      uint64 `json:"price"`
	Sequence   uint64 `json:"sequence"`
	ObservedAt string `json:"observedAt"`
}
