package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

// ClaimUserWinnings paga a aposta vencedora do usuário exatamente uma vez
// Flag de claim, streak, pool de jackpot e saldo mudam na mesma transação
func (p *Postgres) ClaimUserWinnings(ctx context.Context, userID string, index uint64) (payout, bonus uint64, err error) {
	err = p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := lockConfig(ctx, tx)
		if err != nil {
			return err
		}
		round, err := getRound(ctx, tx, index, false)
		if err != nil {
			return err
		}
		wager, err := getWager(ctx, tx, userID, index, true)
		if err != nil {
			return err
		}
		acct, err := lockAccount(ctx, tx, userID, false)
		if err != nil {
			return err
		}

		payout, bonus, err = engine.ClaimUserWinnings(cfg, acct, round, wager)
		if err != nil {
			return err
		}

		if err := saveWagerFlags(ctx, tx, wager); err != nil {
			return err
		}
		if err := saveAccount(ctx, tx, acct); err != nil {
			return err
		}
		return saveConfig(ctx, tx, cfg)
	})
	if err != nil {
		return 0, 0, err
	}
	return payout, bonus, nil
}

// ClaimAffiliateWinnings paga ao afiliado sua fatia da aposta indicada
// Independente do claim do usuário; credita na conta do afiliado
func (p *Postgres) ClaimAffiliateWinnings(ctx context.Context, affiliate, userID string, index uint64) (uint64, error) {
	var amount uint64
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := readConfigTx(ctx, tx)
		if err != nil {
			return err
		}
		round, err := getRound(ctx, tx, index, false)
		if err != nil {
			return err
		}
		wager, err := getWager(ctx, tx, userID, index, true)
		if err != nil {
			return err
		}

		amount, err = engine.ClaimAffiliateWinnings(cfg.Allocation, round, wager, affiliate)
		if err != nil {
			return err
		}

		acct, err := lockAccount(ctx, tx, affiliate, true)
		if err != nil {
			return err
		}
		acct.AvailableAmount += amount

		if err := saveWagerFlags(ctx, tx, wager); err != nil {
			return err
		}
		return saveAccount(ctx, tx, acct)
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}
