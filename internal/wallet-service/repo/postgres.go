package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// EnsureSchema cria as tabelas de carteira se não existirem
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS wallets (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL UNIQUE,
			balance_units BIGINT NOT NULL DEFAULT 0,
			version       BIGINT NOT NULL DEFAULT 1
		);
		CREATE TABLE IF NOT EXISTS wallet_ledger (
			id             BIGSERIAL PRIMARY KEY,
			wallet_id      TEXT NOT NULL REFERENCES wallets(id),
			operation_type TEXT NOT NULL,
			amount_units   BIGINT NOT NULL,
			external_ref   TEXT,
			description    TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS wallet_ledger_ref
			ON wallet_ledger(wallet_id, operation_type, external_ref)
			WHERE external_ref IS NOT NULL;
	`)
	return err
}

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_units FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_units, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Fund adiciona unidades do token à carteira (on-ramp do simulador)
// Garante lock pessimista na linha da carteira
func (p *Postgres) Fund(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	return p.apply(ctx, userID, amount, "FUND", externalRef, false)
}

// Debit move unidades da carteira para a custódia do motor de rodadas
// Idempotente por (wallet_id, operation_type, external_ref)
func (p *Postgres) Debit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	return p.apply(ctx, userID, -amount, "DEBIT", externalRef, true)
}

// Credit devolve unidades da custódia para a carteira (saques e prêmios)
func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	return p.apply(ctx, userID, amount, "CREDIT", externalRef, true)
}

// apply executa o movimento com lock na carteira e registro no ledger
// delta negativo exige saldo suficiente
func (p *Postgres) apply(ctx context.Context, userID string, delta int64, op, externalRef string, requireRef bool) (string, int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_units FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return "", 0, ErrNotFound
	} else if err != nil {
		return "", 0, err
	}

	// Idempotência: movimento já aplicado para o mesmo external_ref
	if requireRef && externalRef != "" {
		var seen int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM wallet_ledger WHERE wallet_id=$1 AND operation_type=$2 AND external_ref=$3`,
			walletID, op, externalRef).Scan(&seen)
		if err == nil {
			return walletID, balance, nil
		} else if err != sql.ErrNoRows {
			return "", 0, err
		}
	}

	if balance+delta < 0 {
		return "", 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_units = balance_units + $1, version = version + 1 WHERE id=$2`,
		delta, walletID); err != nil {
		return "", 0, err
	}

	var ref any
	if externalRef != "" {
		ref = externalRef
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_units, external_ref, description) VALUES($1,$2,$3,$4,$5)`,
		walletID, op, delta, ref, op+":"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, balance + delta, nil
}
