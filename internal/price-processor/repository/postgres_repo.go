package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/updown-bet-platform-poc/pkg/contracts/events"
)

// PostgresRepo persiste amostras de preço em um banco Postgres
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// EnsureSchema cria as tabelas de preço se não existirem
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS price_current (
			reference   TEXT PRIMARY KEY,
			price       BIGINT NOT NULL,
			source      TEXT NOT NULL,
			sequence    BIGINT NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS price_history (
			id          BIGSERIAL PRIMARY KEY,
			reference   TEXT NOT NULL,
			price       BIGINT NOT NULL,
			sequence    BIGINT NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS price_history_ref_time
			ON price_history(reference, observed_at DESC);
	`)
	return err
}

// UpsertCurrent insere ou atualiza a amostra corrente do feed na tabela price_current
// Utiliza ON CONFLICT para garantir atomicidade; amostras fora de ordem são descartadas
func (r *PostgresRepo) UpsertCurrent(ctx context.Context, e events.PriceUpdate) error {
	const q = `
		INSERT INTO price_current
		  (reference, price, source, sequence, observed_at)
		VALUES
		  ($1,$2,$3,$4,$5)
		ON CONFLICT (reference) DO UPDATE SET
		  price       = EXCLUDED.price,
		  source      = EXCLUDED.source,
		  sequence    = EXCLUDED.sequence,
		  observed_at = EXCLUDED.observed_at
		WHERE price_current.sequence < EXCLUDED.sequence
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.Reference, int64(e.Price), e.Source, int64(e.Sequence), e.ObservedAt,
	)
	return err
}

// InsertHistory insere uma nova amostra no histórico de preços (price_history)
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.PriceUpdate) error {
	const q = `
		INSERT INTO price_history
		  (reference, price, sequence, observed_at)
		VALUES
		  ($1,$2,$3,$4)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.Reference, int64(e.Price), int64(e.Sequence), e.ObservedAt,
	)
	return err
}
