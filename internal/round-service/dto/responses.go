package dto

type BalanceResponse struct {
	UserID          string `json:"userId"`
	AvailableAmount uint64 `json:"availableAmount"`
	Referrer        string `json:"referrer,omitempty"`
	LastWonRound    uint64 `json:"lastWonRound"`
	ConsecutiveWins uint64 `json:"consecutiveWins"`
}

type RoundResponse struct {
	Index                uint64 `json:"index"`
	OpenTime             string `json:"openTime"`
	StartPrice           uint64 `json:"startPrice"`
	EndPrice             uint64 `json:"endPrice"`
	Closed               bool   `json:"closed"`
	Outcome              string `json:"outcome,omitempty"` // só em rodada fechada
	LongCount            uint64 `json:"longCount"`
	ShortCount           uint64 `json:"shortCount"`
	LongTotal            uint64 `json:"longTotal"`
	ShortTotal           uint64 `json:"shortTotal"`
	AffiliatedLongCount  uint64 `json:"affiliatedLongCount"`
	AffiliatedShortCount uint64 `json:"affiliatedShortCount"`
}

type SettlementResponse struct {
	Round               RoundResponse `json:"round"`
	LosingPool          uint64        `json:"losingPool"`
	PlatformFee         uint64        `json:"platformFee"`
	JackpotDelta        uint64        `json:"jackpotDelta"`
	RedirectedToJackpot uint64        `json:"redirectedToJackpot"`
}

type WagerResponse struct {
	UserID             string `json:"userId"`
	RoundIndex         uint64 `json:"roundIndex"`
	Amount             uint64 `json:"amount"`
	Side               string `json:"side"`
	Referrer           string `json:"referrer,omitempty"`
	ClaimedByUser      bool   `json:"claimedByUser"`
	ClaimedByAffiliate bool   `json:"claimedByAffiliate"`
}

type ClaimResponse struct {
	Payout       uint64 `json:"payout"`
	JackpotBonus uint64 `json:"jackpotBonus"`
}

type PlatformConfigResponse struct {
	Owner                   string `json:"owner"`
	AssetReference          string `json:"assetReference"`
	RoundCounter            uint64 `json:"roundCounter"`
	RoundDurationSecs       uint64 `json:"roundDurationSecs"`
	WinnersBps              uint16 `json:"winnersBps"`
	AffiliatesBps           uint16 `json:"affiliatesBps"`
	JackpotBps              uint16 `json:"jackpotBps"`
	PlatformBps             uint16 `json:"platformBps"`
	Tier5                   uint16 `json:"tier5"`
	Tier6                   uint16 `json:"tier6"`
	Tier7                   uint16 `json:"tier7"`
	Tier8                   uint16 `json:"tier8"`
	Tier9                   uint16 `json:"tier9"`
	Tier10                  uint16 `json:"tier10"`
	MinWager                uint64 `json:"minWager"`
	OracleReference         string `json:"oracleReference"`
	StalenessSecs           uint64 `json:"stalenessSecs"`
	JackpotPool             uint64 `json:"jackpotPool"`
	UncollectedPlatformFees uint64 `json:"uncollectedPlatformFees"`
}

type FeesWithdrawnResponse struct {
	Amount uint64 `json:"amount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
