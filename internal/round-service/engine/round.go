package engine

import "time"

// OpenRound cria a próxima rodada a partir do contador global
// prev é a rodada apontada pelo contador (nil quando nenhuma rodada existe);
// ela precisa estar fechada antes da próxima abrir
func OpenRound(cfg *PlatformConfig, prev *Round, now time.Time, startPrice uint64) (*Round, error) {
	if prev != nil && !prev.Closed {
		return nil, ErrPreviousRoundOpen
	}
	if startPrice == 0 {
		return nil, ErrZeroPrice
	}

	r := &Round{
		Index:      cfg.RoundCounter + 1,
		OpenTime:   now,
		StartPrice: startPrice,
	}
	cfg.RoundCounter = r.Index

	return r, nil
}

// CloseRound encerra a rodada, registra o preço final e executa a liquidação
// A liquidação roda exatamente uma vez: rodada fechada rejeita novo fechamento
func CloseRound(cfg *PlatformConfig, r *Round, now time.Time, endPrice uint64) (Settlement, error) {
	if r == nil {
		return Settlement{}, ErrRoundNotFound
	}
	if r.Closed {
		return Settlement{}, ErrRoundClosed
	}
	if now.Before(r.OpenTime.Add(cfg.RoundDuration)) {
		return Settlement{}, ErrRoundStillRunning
	}
	if endPrice == 0 {
		return Settlement{}, ErrZeroPrice
	}

	r.EndPrice = endPrice
	r.Closed = true

	s := settle(r, cfg.Allocation)
	cfg.UncollectedPlatformFees += s.PlatformFee
	cfg.JackpotPool += s.JackpotDelta + s.RedirectedToJackpot

	return s, nil
}

// PlaceWager registra a aposta do usuário na rodada aberta
// Debita o saldo disponível e congela o afiliado da conta na aposta
// Toda verificação precede toda mutação: falha não deixa efeito parcial
func PlaceWager(cfg *PlatformConfig, acct *UserAccount, r *Round, amount uint64, side Side) (*Wager, error) {
	if r == nil {
		return nil, ErrRoundNotFound
	}
	if r.Closed {
		return nil, ErrRoundClosed
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if amount < cfg.MinWager {
		return nil, ErrBelowMinWager
	}
	if acct.AvailableAmount < amount {
		return nil, ErrInsufficientFunds
	}

	acct.AvailableAmount -= amount

	w := &Wager{
		UserID:           acct.UserID,
		RoundIndex:       r.Index,
		Amount:           amount,
		Side:             side,
		ReferrerSnapshot: acct.Referrer,
	}

	if side == SideLong {
		r.LongCount++
		r.LongTotal += amount
		if w.ReferrerSnapshot != "" {
			r.AffiliatedLongCount++
		}
	} else {
		r.ShortCount++
		r.ShortTotal += amount
		if w.ReferrerSnapshot != "" {
			r.AffiliatedShortCount++
		}
	}

	return w, nil
}
