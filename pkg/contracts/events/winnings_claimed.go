package events

// Evento emitido após um saque de prêmio bem-sucedido
// Claimant é o usuário vencedor ou o afiliado, conforme Kind
type WinningsClaimed struct {
	Kind         string `json:"kind"` // "USER" | "AFFILIATE"
	Claimant     string `json:"claimant"`
	UserID       string `json:"user_id"`
	RoundIndex   uint64 `json:"round_index"`
	Amount       uint64 `json:"amount"`
	JackpotBonus uint64 `json:"jackpot_bonus,omitempty"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
