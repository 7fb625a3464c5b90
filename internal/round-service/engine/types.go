package engine

import "time"

// BPS é a base de pontos-base usada em todos os rateios (10000 = 100%)
const BPS = 10_000

// Side é a direção de uma aposta: LONG (preço sobe) ou SHORT (preço cai)
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ParseSide valida e normaliza a direção recebida da borda
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideLong:
		return SideLong, nil
	case SideShort:
		return SideShort, nil
	default:
		return "", ErrInvalidSide
	}
}

// Allocation define o rateio do pool perdedor em pontos-base
// A soma das quatro fatias precisa fechar exatamente em 10000
type Allocation struct {
	WinnersBps    uint16
	AffiliatesBps uint16
	JackpotBps    uint16
	PlatformBps   uint16
}

func (a Allocation) Validate() error {
	sum := uint32(a.WinnersBps) + uint32(a.AffiliatesBps) + uint32(a.JackpotBps) + uint32(a.PlatformBps)
	if sum != BPS {
		return ErrInvalidAllocation
	}
	return nil
}

// JackpotTiers define o bônus (em bps do pool de jackpot) por sequência de vitórias
// Os valores precisam ser não-decrescentes do tier 5 ao 10
type JackpotTiers struct {
	Tier5  uint16
	Tier6  uint16
	Tier7  uint16
	Tier8  uint16
	Tier9  uint16
	Tier10 uint16
}

func (t JackpotTiers) Validate() error {
	tiers := [...]uint16{t.Tier5, t.Tier6, t.Tier7, t.Tier8, t.Tier9, t.Tier10}
	var prev uint16
	for _, v := range tiers {
		if v > BPS || v < prev {
			return ErrInvalidJackpotTiers
		}
		prev = v
	}
	return nil
}

// ForStreak mapeia a sequência de vitórias para o bps de bônus do tier
// Abaixo de 5 não há bônus; 10 ou mais usa o tier máximo
func (t JackpotTiers) ForStreak(streak uint64) uint16 {
	switch {
	case streak < 5:
		return 0
	case streak == 5:
		return t.Tier5
	case streak == 6:
		return t.Tier6
	case streak == 7:
		return t.Tier7
	case streak == 8:
		return t.Tier8
	case streak == 9:
		return t.Tier9
	default:
		return t.Tier10
	}
}

// PlatformConfig é o agregado singleton de configuração da plataforma
// Inclui os acumuladores globais (jackpot e taxas não coletadas)
type PlatformConfig struct {
	Owner                   string
	AssetReference          string
	RoundCounter            uint64
	RoundDuration           time.Duration
	Allocation              Allocation
	JackpotTiers            JackpotTiers
	MinWager                uint64
	OracleReference         string
	StalenessTolerance      time.Duration
	JackpotPool             uint64
	UncollectedPlatformFees uint64
}

// Round é uma rodada de apostas com amostras de preço de abertura e fechamento
type Round struct {
	Index      uint64
	OpenTime   time.Time
	StartPrice uint64
	EndPrice   uint64 // zero até o fechamento
	Closed     bool

	LongCount  uint64
	ShortCount uint64
	LongTotal  uint64
	ShortTotal uint64

	// Contagens informativas de apostas com afiliado
	AffiliatedLongCount  uint64
	AffiliatedShortCount uint64
}

// Wager é a aposta de um usuário em uma rodada específica
// Os flags de claim são one-shot: uma vez true, nunca voltam
type Wager struct {
	UserID           string
	RoundIndex       uint64
	Amount           uint64
	Side             Side
	ReferrerSnapshot string // copiado da conta no momento da aposta

	ClaimedByUser      bool
	ClaimedByAffiliate bool
}

// UserAccount é o saldo custodiado de um depositante mais o estado de streak
type UserAccount struct {
	UserID          string
	AvailableAmount uint64
	Referrer        string // vazio = sem afiliado
	LastWonRound    uint64
	ConsecutiveWins uint64
}
