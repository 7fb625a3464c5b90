package engine

// Outcome é o resultado de uma rodada fechada
type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeLongWon
	OutcomeShortWon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLongWon:
		return "LONG_WON"
	case OutcomeShortWon:
		return "SHORT_WON"
	default:
		return "TIE"
	}
}

// Outcome compara as duas amostras de preço da rodada
// Empate exato significa que nenhum lado vence
func (r *Round) Outcome() Outcome {
	switch {
	case r.EndPrice > r.StartPrice:
		return OutcomeLongWon
	case r.EndPrice < r.StartPrice:
		return OutcomeShortWon
	default:
		return OutcomeTie
	}
}

// WinningSide retorna o lado vencedor; ok=false no empate
func (r *Round) WinningSide() (Side, bool) {
	switch r.Outcome() {
	case OutcomeLongWon:
		return SideLong, true
	case OutcomeShortWon:
		return SideShort, true
	default:
		return "", false
	}
}

// losingPool é o total apostado pelos lados não-vencedores
// No empate ambos os lados perdem
func (r *Round) losingPool() uint64 {
	switch r.Outcome() {
	case OutcomeLongWon:
		return r.ShortTotal
	case OutcomeShortWon:
		return r.LongTotal
	default:
		return r.LongTotal + r.ShortTotal
	}
}

// winnerTotals retorna o total apostado no lado vencedor (zero no empate)
func (r *Round) winnerTotal() uint64 {
	switch r.Outcome() {
	case OutcomeLongWon:
		return r.LongTotal
	case OutcomeShortWon:
		return r.ShortTotal
	default:
		return 0
	}
}

// Settlement é o rateio do pool perdedor calculado no fechamento
// Todos os cortes usam divisão inteira pra baixo; o resto permanece no pool
// custodiado à disposição dos vencedores
type Settlement struct {
	Outcome    Outcome
	LosingPool uint64

	PlatformFee  uint64 // acumula em UncollectedPlatformFees
	JackpotDelta uint64 // fatia de jackpot, acumula em JackpotPool

	// Fatia winners+affiliates redirecionada ao jackpot quando o lado
	// vencedor não tem aposta alguma (inclui sempre o empate)
	RedirectedToJackpot uint64
}

// settle calcula o rateio de uma rodada recém-fechada
// Pool perdedor zero não movimenta acumulador nenhum
func settle(r *Round, alloc Allocation) Settlement {
	s := Settlement{Outcome: r.Outcome(), LosingPool: r.losingPool()}
	if s.LosingPool == 0 {
		return s
	}

	s.PlatformFee = mulDivDown(s.LosingPool, uint64(alloc.PlatformBps), BPS)
	s.JackpotDelta = mulDivDown(s.LosingPool, uint64(alloc.JackpotBps), BPS)

	if r.winnerTotal() == 0 {
		// Ninguém pra pagar: a fatia distribuível inteira vira jackpot
		s.RedirectedToJackpot = mulDivDown(s.LosingPool, uint64(alloc.WinnersBps)+uint64(alloc.AffiliatesBps), BPS)
	}

	return s
}
