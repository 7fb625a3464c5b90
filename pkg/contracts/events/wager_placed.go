package events

type WagerPlaced struct {
	UserID     string `json:"user_id"`
	RoundIndex uint64 `json:"round_index"`
	Amount     uint64 `json:"amount"`
	Side       string `json:"side"` // "LONG" | "SHORT"
	Referrer   string `json:"referrer,omitempty"`
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
