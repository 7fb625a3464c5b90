package engine

// ClaimUserWinnings paga a aposta vencedora de um usuário, uma única vez
// Retorna o payout (principal + lucro proporcional) e o bônus de jackpot,
// ambos já creditados no saldo disponível da conta
func ClaimUserWinnings(cfg *PlatformConfig, acct *UserAccount, r *Round, w *Wager) (payout, bonus uint64, err error) {
	if r == nil || !r.Closed {
		return 0, 0, ErrRoundNotClosed
	}
	if w.ClaimedByUser {
		return 0, 0, ErrAlreadyClaimed
	}
	winner, ok := r.WinningSide()
	if !ok || w.Side != winner {
		return 0, 0, ErrIneligible
	}

	w.ClaimedByUser = true

	// Lucro: fatia winners do pool perdedor, proporcional à aposta
	profit := winnerCut(r, w, uint64(cfg.Allocation.WinnersBps))
	payout = w.Amount + profit

	// Streak: vitória consecutiva incrementa, senão recomeça em 1
	if acct.LastWonRound == r.Index-1 {
		acct.ConsecutiveWins++
	} else {
		acct.ConsecutiveWins = 1
	}
	acct.LastWonRound = r.Index

	// Bônus de jackpot por streak, pago do pool e descontado dele
	tier := cfg.JackpotTiers.ForStreak(acct.ConsecutiveWins)
	if tier > 0 && cfg.JackpotPool > 0 {
		bonus = mulDivDown(cfg.JackpotPool, uint64(tier), BPS)
		cfg.JackpotPool -= bonus

		// No tier máximo a contagem reinicia após o pagamento
		if acct.ConsecutiveWins >= 10 {
			acct.ConsecutiveWins = 0
		}
	}

	acct.AvailableAmount += payout + bonus
	return payout, bonus, nil
}

// ClaimAffiliateWinnings paga ao afiliado sua fatia da aposta vencedora indicada
// Independente do claim do próprio usuário, em qualquer ordem
func ClaimAffiliateWinnings(alloc Allocation, r *Round, w *Wager, affiliate string) (uint64, error) {
	if r == nil || !r.Closed {
		return 0, ErrRoundNotClosed
	}
	if w.ReferrerSnapshot == "" || w.ReferrerSnapshot != affiliate {
		return 0, ErrIneligible
	}
	if w.ClaimedByAffiliate {
		return 0, ErrAlreadyClaimed
	}
	winner, ok := r.WinningSide()
	if !ok || w.Side != winner {
		return 0, ErrIneligible
	}

	w.ClaimedByAffiliate = true

	return winnerCut(r, w, uint64(alloc.AffiliatesBps)), nil
}

// winnerCut rateia a fatia `shareBps` do pool perdedor proporcionalmente
// à aposta dentro do total do lado vencedor
// O total vencedor nunca é zero aqui: a própria aposta está nele
func winnerCut(r *Round, w *Wager, shareBps uint64) uint64 {
	losing := r.losingPool()
	if losing == 0 {
		return 0
	}
	pool := mulDivDown(losing, shareBps, BPS)
	return mulDivDown(w.Amount, pool, r.winnerTotal())
}

// CollectPlatformFees zera o acumulador de taxas e retorna o valor a pagar
// Somente o dono da plataforma coleta; acumulador zerado rejeita a coleta
func CollectPlatformFees(cfg *PlatformConfig, caller string) (uint64, error) {
	if caller != cfg.Owner {
		return 0, ErrNotOwner
	}
	if cfg.UncollectedPlatformFees == 0 {
		return 0, ErrNothingToCollect
	}

	amount := cfg.UncollectedPlatformFees
	cfg.UncollectedPlatformFees = 0
	return amount, nil
}
