package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

// Postgres implementa as operações do motor de rodadas sobre Postgres
// Cada operação roda em transação com lock pessimista nas linhas tocadas;
// toda validação acontece antes de qualquer escrita
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório do motor
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema cria as tabelas do motor caso ainda não existam
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS platform_config (
		id                     SMALLINT PRIMARY KEY,
		owner_id               TEXT NOT NULL,
		asset_reference        TEXT NOT NULL,
		round_counter          BIGINT NOT NULL DEFAULT 0,
		round_duration_secs    BIGINT NOT NULL,
		winners_bps            INT NOT NULL,
		affiliates_bps         INT NOT NULL,
		jackpot_bps            INT NOT NULL,
		platform_bps           INT NOT NULL,
		tier5_bps              INT NOT NULL,
		tier6_bps              INT NOT NULL,
		tier7_bps              INT NOT NULL,
		tier8_bps              INT NOT NULL,
		tier9_bps              INT NOT NULL,
		tier10_bps             INT NOT NULL,
		min_wager              BIGINT NOT NULL,
		oracle_reference       TEXT NOT NULL,
		staleness_secs         BIGINT NOT NULL,
		jackpot_pool           BIGINT NOT NULL DEFAULT 0,
		uncollected_fees       BIGINT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS user_accounts (
		user_id          TEXT PRIMARY KEY,
		available_amount BIGINT NOT NULL DEFAULT 0,
		referrer         TEXT NOT NULL DEFAULT '',
		last_won_round   BIGINT NOT NULL DEFAULT 0,
		consecutive_wins BIGINT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS rounds (
		index                  BIGINT PRIMARY KEY,
		open_time              TIMESTAMPTZ NOT NULL,
		start_price            BIGINT NOT NULL,
		end_price              BIGINT NOT NULL DEFAULT 0,
		closed                 BOOLEAN NOT NULL DEFAULT FALSE,
		long_count             BIGINT NOT NULL DEFAULT 0,
		short_count            BIGINT NOT NULL DEFAULT 0,
		long_total             BIGINT NOT NULL DEFAULT 0,
		short_total            BIGINT NOT NULL DEFAULT 0,
		affiliated_long_count  BIGINT NOT NULL DEFAULT 0,
		affiliated_short_count BIGINT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS wagers (
		user_id              TEXT NOT NULL,
		round_index          BIGINT NOT NULL,
		amount               BIGINT NOT NULL,
		side                 TEXT NOT NULL,
		referrer_snapshot    TEXT NOT NULL DEFAULT '',
		claimed_by_user      BOOLEAN NOT NULL DEFAULT FALSE,
		claimed_by_affiliate BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, round_index)
	);`
	_, err := p.db.ExecContext(ctx, ddl)
	return err
}

// withTx executa fn dentro de uma transação, com rollback garantido em erro
func (p *Postgres) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

const configColumns = `owner_id, asset_reference, round_counter, round_duration_secs,
	winners_bps, affiliates_bps, jackpot_bps, platform_bps,
	tier5_bps, tier6_bps, tier7_bps, tier8_bps, tier9_bps, tier10_bps,
	min_wager, oracle_reference, staleness_secs, jackpot_pool, uncollected_fees`

// scanConfig materializa a linha singleton de configuração
func scanConfig(row *sql.Row) (*engine.PlatformConfig, error) {
	var cfg engine.PlatformConfig
	var durationSecs, stalenessSecs int64
	var counter, minWager, jackpot, fees int64
	err := row.Scan(
		&cfg.Owner, &cfg.AssetReference, &counter, &durationSecs,
		&cfg.Allocation.WinnersBps, &cfg.Allocation.AffiliatesBps,
		&cfg.Allocation.JackpotBps, &cfg.Allocation.PlatformBps,
		&cfg.JackpotTiers.Tier5, &cfg.JackpotTiers.Tier6, &cfg.JackpotTiers.Tier7,
		&cfg.JackpotTiers.Tier8, &cfg.JackpotTiers.Tier9, &cfg.JackpotTiers.Tier10,
		&minWager, &cfg.OracleReference, &stalenessSecs, &jackpot, &fees,
	)
	if err != nil {
		return nil, err
	}
	cfg.RoundCounter = uint64(counter)
	cfg.RoundDuration = time.Duration(durationSecs) * time.Second
	cfg.StalenessTolerance = time.Duration(stalenessSecs) * time.Second
	cfg.MinWager = uint64(minWager)
	cfg.JackpotPool = uint64(jackpot)
	cfg.UncollectedPlatformFees = uint64(fees)
	return &cfg, nil
}

func lockConfig(ctx context.Context, tx *sql.Tx) (*engine.PlatformConfig, error) {
	return scanConfig(tx.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM platform_config WHERE id=1 FOR UPDATE`))
}

func readConfigTx(ctx context.Context, tx *sql.Tx) (*engine.PlatformConfig, error) {
	return scanConfig(tx.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM platform_config WHERE id=1`))
}

// saveConfig persiste os campos mutáveis da configuração
func saveConfig(ctx context.Context, tx *sql.Tx, cfg *engine.PlatformConfig) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE platform_config SET
			owner_id=$1, round_counter=$2, round_duration_secs=$3,
			winners_bps=$4, affiliates_bps=$5, jackpot_bps=$6, platform_bps=$7,
			tier5_bps=$8, tier6_bps=$9, tier7_bps=$10, tier8_bps=$11, tier9_bps=$12, tier10_bps=$13,
			min_wager=$14, oracle_reference=$15, staleness_secs=$16,
			jackpot_pool=$17, uncollected_fees=$18
		WHERE id=1`,
		cfg.Owner, int64(cfg.RoundCounter), int64(cfg.RoundDuration/time.Second),
		cfg.Allocation.WinnersBps, cfg.Allocation.AffiliatesBps,
		cfg.Allocation.JackpotBps, cfg.Allocation.PlatformBps,
		cfg.JackpotTiers.Tier5, cfg.JackpotTiers.Tier6, cfg.JackpotTiers.Tier7,
		cfg.JackpotTiers.Tier8, cfg.JackpotTiers.Tier9, cfg.JackpotTiers.Tier10,
		int64(cfg.MinWager), cfg.OracleReference, int64(cfg.StalenessTolerance/time.Second),
		int64(cfg.JackpotPool), int64(cfg.UncollectedPlatformFees),
	)
	return err
}

const roundColumns = `index, open_time, start_price, end_price, closed,
	long_count, short_count, long_total, short_total,
	affiliated_long_count, affiliated_short_count`

func scanRound(row *sql.Row) (*engine.Round, error) {
	var r engine.Round
	var idx, sp, ep, lc, sc, lt, st, alc, asc int64
	err := row.Scan(&idx, &r.OpenTime, &sp, &ep, &r.Closed, &lc, &sc, &lt, &st, &alc, &asc)
	if err != nil {
		return nil, err
	}
	r.Index = uint64(idx)
	r.StartPrice = uint64(sp)
	r.EndPrice = uint64(ep)
	r.LongCount = uint64(lc)
	r.ShortCount = uint64(sc)
	r.LongTotal = uint64(lt)
	r.ShortTotal = uint64(st)
	r.AffiliatedLongCount = uint64(alc)
	r.AffiliatedShortCount = uint64(asc)
	return &r, nil
}

// getRound busca a rodada pelo índice; forUpdate trava a linha na transação
func getRound(ctx context.Context, tx *sql.Tx, index uint64, forUpdate bool) (*engine.Round, error) {
	q := `SELECT ` + roundColumns + ` FROM rounds WHERE index=$1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	r, err := scanRound(tx.QueryRowContext(ctx, q, int64(index)))
	if err == sql.ErrNoRows {
		return nil, engine.ErrRoundNotFound
	}
	return r, err
}

func saveRound(ctx context.Context, tx *sql.Tx, r *engine.Round) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE rounds SET
			end_price=$2, closed=$3,
			long_count=$4, short_count=$5, long_total=$6, short_total=$7,
			affiliated_long_count=$8, affiliated_short_count=$9
		WHERE index=$1`,
		int64(r.Index), int64(r.EndPrice), r.Closed,
		int64(r.LongCount), int64(r.ShortCount), int64(r.LongTotal), int64(r.ShortTotal),
		int64(r.AffiliatedLongCount), int64(r.AffiliatedShortCount),
	)
	return err
}

// lockAccount carrega a conta do usuário com lock, criando-a quando permitido
func lockAccount(ctx context.Context, tx *sql.Tx, userID string, createMissing bool) (*engine.UserAccount, error) {
	acct := &engine.UserAccount{UserID: userID}
	var amount, lastWon, wins int64
	err := tx.QueryRowContext(ctx, `
		SELECT available_amount, referrer, last_won_round, consecutive_wins
		FROM user_accounts WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&amount, &acct.Referrer, &lastWon, &wins)
	if err == sql.ErrNoRows {
		if !createMissing {
			return nil, engine.ErrInsufficientFunds
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_accounts(user_id) VALUES($1)`, userID); err != nil {
			return nil, err
		}
		return acct, nil
	}
	if err != nil {
		return nil, err
	}
	acct.AvailableAmount = uint64(amount)
	acct.LastWonRound = uint64(lastWon)
	acct.ConsecutiveWins = uint64(wins)
	return acct, nil
}

func saveAccount(ctx context.Context, tx *sql.Tx, acct *engine.UserAccount) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_accounts SET
			available_amount=$2, referrer=$3, last_won_round=$4, consecutive_wins=$5
		WHERE user_id=$1`,
		acct.UserID, int64(acct.AvailableAmount), acct.Referrer,
		int64(acct.LastWonRound), int64(acct.ConsecutiveWins),
	)
	return err
}

// getWager busca a aposta (usuário, rodada); forUpdate trava a linha
func getWager(ctx context.Context, tx *sql.Tx, userID string, index uint64, forUpdate bool) (*engine.Wager, error) {
	q := `SELECT amount, side, referrer_snapshot, claimed_by_user, claimed_by_affiliate
		FROM wagers WHERE user_id=$1 AND round_index=$2`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	w := &engine.Wager{UserID: userID, RoundIndex: index}
	var amount int64
	var side string
	err := tx.QueryRowContext(ctx, q, userID, int64(index)).
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

func saveWagerFlags(ctx context.Context, tx *sql.Tx, w *engine.Wager) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wagers SET claimed_by_user=$3, claimed_by_affiliate=$4
		WHERE user_id=$1 AND round_index=$2`,
		w.UserID, int64(w.RoundIndex), w.ClaimedByUser, w.ClaimedByAffiliate,
	)
	return err
}
