package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

// OpenRound abre a próxima rodada com o preço inicial amostrado do oráculo
// Rejeita se a rodada anterior ainda estiver aberta ou se o índice já existir
func (p *Postgres) OpenRound(ctx context.Context, now time.Time, startPrice uint64) (*engine.Round, error) {
	var round *engine.Round
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := lockConfig(ctx, tx)
		if err != nil {
			return err
		}

		var prev *engine.Round
		if cfg.RoundCounter > 0 {
			prev, err = getRound(ctx, tx, cfg.RoundCounter, false)
			if err != nil {
				return err
			}
		}

		round, err = engine.OpenRound(cfg, prev, now, startPrice)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO rounds(index, open_time, start_price)
			VALUES($1,$2,$3)`,
			int64(round.Index), round.OpenTime, int64(round.StartPrice))
		if err != nil {
			// chave duplicada: a rodada já foi aberta por outra chamada
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return engine.ErrRoundAlreadyOpen
			}
			return err
		}

		return saveConfig(ctx, tx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// CloseRound encerra a rodada indicada, liquida o pool perdedor e
// atualiza os acumuladores globais, tudo na mesma transação
func (p *Postgres) CloseRound(ctx context.Context, index uint64, now time.Time, endPrice uint64) (*engine.Round, engine.Settlement, error) {
	var round *engine.Round
	var stl engine.Settlement
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := lockConfig(ctx, tx)
		if err != nil {
			return err
		}
		round, err = getRound(ctx, tx, index, true)
		if err != nil {
			return err
		}

		stl, err = engine.CloseRound(cfg, round, now, endPrice)
		if err != nil {
			return err
		}

		if err := saveRound(ctx, tx, round); err != nil {
			return err
		}
		return saveConfig(ctx, tx, cfg)
	})
	if err != nil {
		return nil, engine.Settlement{}, err
	}
	return round, stl, nil
}

// Round retorna a rodada pelo índice
func (p *Postgres) Round(ctx context.Context, index uint64) (*engine.Round, error) {
	r, err := scanRound(p.db.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE index=$1`, int64(index)))
	if err == sql.ErrNoRows {
		return nil, engine.ErrRoundNotFound
	}
	return r, err
}

// CurrentRound retorna a rodada apontada pelo contador global
func (p *Postgres) CurrentRound(ctx context.Context) (*engine.Round, error) {
	cfg, err := p.Config(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.RoundCounter == 0 {
		return nil, engine.ErrRoundNotFound
	}
	return p.Round(ctx, cfg.RoundCounter)
}

// PlaceWager registra a aposta do usuário na rodada corrente
// Uma aposta por (usuário, rodada); saldo debitado na mesma transação
func (p *Postgres) PlaceWager(ctx context.Context, userID string, amount uint64, side engine.Side) (*engine.Wager, error) {
	var wager *engine.Wager
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := readConfigTx(ctx, tx)
		if err != nil {
			return err
		}
		if cfg.RoundCounter == 0 {
			return engine.ErrRoundNotFound
		}

		round, err := getRound(ctx, tx, cfg.RoundCounter, true)
		if err != nil {
			return err
		}

		// Rejeita aposta repetida antes de qualquer débito
		if _, err := getWager(ctx, tx, userID, round.Index, false); err == nil {
			return engine.ErrWagerExists
		} else if err != engine.ErrWagerNotFound {
			return err
		}

		acct, err := lockAccount(ctx, tx, userID, true)
		if err != nil {
			return err
		}

		wager, err = engine.PlaceWager(cfg, acct, round, amount, side)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO wagers(user_id, round_index, amount, side, referrer_snapshot)
			VALUES($1,$2,$3,$4,$5)`,
			wager.UserID, int64(wager.RoundIndex), int64(wager.Amount),
			string(wager.Side), wager.ReferrerSnapshot); err != nil {
			return err
		}

		if err := saveAccount(ctx, tx, acct); err != nil {
			return err
		}
		return saveRound(ctx, tx, round)
	})
	if err != nil {
		return nil, err
	}
	return wager, nil
}

// Wager retorna a aposta (usuário, rodada)
func (p *Postgres) Wager(ctx context.Context, userID string, index uint64) (*engine.Wager, error) {
	w := &engine.Wager{UserID: userID, RoundIndex: index}
	var amount int64
	var side string
	err := p.db.QueryRowContext(ctx, `
		SELECT amount, side, referrer_snapshot, claimed_by_user, claimed_by_affiliate
		FROM wagers WHERE user_id=$1 AND round_index=$2`, userID, int64(index)).
		Scan(&amount, &side, &w.ReferrerSnapshot, &w.ClaimedByUser, &w.ClaimedByAffiliate)
	if err == sql.ErrNoRows {
		return nil, engine.ErrWagerNotFound
	}
	if err != nil {
		return nil, err
	}
	w.Amount = uint64(amount)
	w.Side = engine.Side(side)
	return w, nil
}
