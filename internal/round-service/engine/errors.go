package engine

import "errors"

// Kind classifica os erros do motor por categoria
// Usado na borda HTTP para mapear status codes
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindState
	KindEligibility
	KindResource
	KindOracle
)

// Error é um erro tipado do motor de rodadas
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// KindOf retorna a categoria de um erro do motor (KindUnknown se não for)
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	// Validação
	ErrZeroAmount           = newErr(KindValidation, "amount must be greater than zero")
	ErrBelowMinWager        = newErr(KindValidation, "amount below minimum wager")
	ErrInvalidAllocation    = newErr(KindValidation, "allocation shares must sum to 10000 bps")
	ErrInvalidJackpotTiers  = newErr(KindValidation, "jackpot tiers must be <= 10000 bps and non-decreasing")
	ErrZeroDuration         = newErr(KindValidation, "round duration must be greater than zero")
	ErrEmptyOracleReference = newErr(KindValidation, "oracle reference must not be empty")
	ErrSelfReferral         = newErr(KindValidation, "referrer must not be the user itself")
	ErrInvalidSide          = newErr(KindValidation, "side must be LONG or SHORT")

	// Autorização
	ErrNotOwner      = newErr(KindAuthorization, "caller is not the platform owner")
	ErrOwnerCoSign   = newErr(KindAuthorization, "new owner must co-sign the ownership transfer")
	ErrWrongCaller   = newErr(KindAuthorization, "caller identity does not match the named user")

	// Estado
	ErrPreviousRoundOpen = newErr(KindState, "previous round is still open")
	ErrRoundAlreadyOpen  = newErr(KindState, "round already open")
	ErrRoundNotFound     = newErr(KindState, "round not found")
	ErrRoundClosed       = newErr(KindState, "round already closed")
	ErrRoundStillRunning = newErr(KindState, "round duration has not elapsed yet")
	ErrRoundNotClosed    = newErr(KindState, "round not closed yet")
	ErrWagerExists       = newErr(KindState, "wager already placed for this round")
	ErrWagerNotFound     = newErr(KindState, "no wager for this user and round")
	ErrNothingToCollect  = newErr(KindState, "no platform fees to collect")

	// Elegibilidade
	ErrIneligible     = newErr(KindEligibility, "wager is not on the winning side")
	ErrAlreadyClaimed = newErr(KindEligibility, "winnings already claimed")

	// Recursos
	ErrInsufficientFunds = newErr(KindResource, "insufficient available balance")

	// Oráculo
	ErrZeroPrice  = newErr(KindOracle, "oracle returned a zero price")
	ErrStalePrice = newErr(KindOracle, "oracle price sample is stale")
)
