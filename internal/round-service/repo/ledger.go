package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

// Deposit credita o valor no saldo custodiado do usuário
// A movimentação externa do token acontece antes, via custodian
func (p *Postgres) Deposit(ctx context.Context, userID string, amount uint64) error {
	if amount == 0 {
		return engine.ErrZeroAmount
	}
	return p.withTx(ctx, func(tx *sql.Tx) error {
		acct, err := lockAccount(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		acct.AvailableAmount += amount
		return saveAccount(ctx, tx, acct)
	})
}

// Withdraw debita o saldo custodiado; nunca deixa o saldo negativo
func (p *Postgres) Withdraw(ctx context.Context, userID string, amount uint64) error {
	if amount == 0 {
		return engine.ErrZeroAmount
	}
	return p.withTx(ctx, func(tx *sql.Tx) error {
		acct, err := lockAccount(ctx, tx, userID, false)
		if err != nil {
			return err
		}
		if acct.AvailableAmount < amount {
			return engine.ErrInsufficientFunds
		}
		acct.AvailableAmount -= amount
		return saveAccount(ctx, tx, acct)
	})
}

// SetReferrer registra (ou limpa, com valor vazio) o afiliado do usuário
// Autoindicação é rejeitada; afeta apenas apostas futuras
func (p *Postgres) SetReferrer(ctx context.Context, userID, referrer string) error {
	if referrer == userID {
		return engine.ErrSelfReferral
	}
	return p.withTx(ctx, func(tx *sql.Tx) error {
		acct, err := lockAccount(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		acct.Referrer = referrer
		return saveAccount(ctx, tx, acct)
	})
}

// Account retorna a conta do usuário (erro de recurso se não existir)
func (p *Postgres) Account(ctx context.Context, userID string) (*engine.UserAccount, error) {
	acct := &engine.UserAccount{UserID: userID}
	var amount, lastWon, wins int64
	err := p.db.QueryRowContext(ctx, `
		SELECT available_amount, referrer, last_won_round, consecutive_wins
		FROM user_accounts WHERE user_id=$1`, userID).
		Scan(&amount, &acct.Referrer, &lastWon, &wins)
	if err == sql.ErrNoRows {
		return nil, engine.ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}
	acct.AvailableAmount = uint64(amount)
	acct.LastWonRound = uint64(lastWon)
	acct.ConsecutiveWins = uint64(wins)
	return acct, nil
}
