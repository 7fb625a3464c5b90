package dto

type TransferRequest struct {
	UserID      string `json:"userId"`
	Amount      uint64 `json:"amount"`
	ExternalRef string `json:"external_ref"`
}
