package events

// Evento publicado quando uma nova rodada é aberta
type RoundOpened struct {
	RoundIndex uint64 `json:"round_index"`
	StartPrice uint64 `json:"start_price"`
	OpenTime   int64  `json:"open_time_unix"`
	TsUnixMs   int64  `json:"ts_unix_ms"`
}

// Evento publicado quando uma rodada é encerrada e liquidada
// Os campos de liquidação refletem o rateio do pool perdedor em bps
type RoundClosed struct {
	RoundIndex          uint64 `json:"round_index"`
	StartPrice          uint64 `json:"start_price"`
	EndPrice            uint64 `json:"end_price"`
	Outcome             string `json:"outcome"` // "LONG_WON" | "SHORT_WON" | "TIE"
	LosingPool          uint64 `json:"losing_pool"`
	PlatformFee         uint64 `json:"platform_fee"`
	JackpotDelta        uint64 `json:"jackpot_delta"`
	RedirectedToJackpot uint64 `json:"redirected_to_jackpot"`
	TsUnixMs            int64  `json:"ts_unix_ms"`
}
