package dto

// Corpo das operações de saldo custodiado
type BalanceRequest struct {
	UserID string `json:"userId"`
	Amount uint64 `json:"amount"`
}

type SetReferrerRequest struct {
	UserID   string `json:"userId"`
	Referrer string `json:"referrer"` // vazio limpa o afiliado
}

type PlaceWagerRequest struct {
	UserID string `json:"userId"`
	Amount uint64 `json:"amount"`
	Side   string `json:"side"` // "LONG" | "SHORT"
}

type ClaimUserRequest struct {
	UserID     string `json:"userId"`
	RoundIndex uint64 `json:"roundIndex"`
}

type ClaimAffiliateRequest struct {
	Affiliate  string `json:"affiliate"`
	UserID     string `json:"userId"`
	RoundIndex uint64 `json:"roundIndex"`
}

// Setters da configuração da plataforma (owner-only)
type SetDurationRequest struct {
	Seconds uint64 `json:"seconds"`
}

type SetAllocationRequest struct {
	WinnersBps    uint16 `json:"winnersBps"`
	AffiliatesBps uint16 `json:"affiliatesBps"`
	JackpotBps    uint16 `json:"jackpotBps"`
	PlatformBps   uint16 `json:"platformBps"`
}

type SetJackpotTiersRequest struct {
	Tier5  uint16 `json:"tier5"`
	Tier6  uint16 `json:"tier6"`
	Tier7  uint16 `json:"tier7"`
	Tier8  uint16 `json:"tier8"`
	Tier9  uint16 `json:"tier9"`
	Tier10 uint16 `json:"tier10"`
}

type SetMinWagerRequest struct {
	Amount uint64 `json:"amount"`
}

type SetOracleReferenceRequest struct {
	Reference string `json:"reference"`
}

type SetStalenessRequest struct {
	Seconds uint64 `json:"seconds"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"newOwner"`
}
