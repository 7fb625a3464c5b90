package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

// Valores iniciais da plataforma, ajustáveis depois pelos setters do dono
const (
	defaultDurationSecs  = 300
	defaultWinnersBps    = 8000
	defaultAffiliatesBps = 500
	defaultJackpotBps    = 500
	defaultPlatformBps   = 1000
	defaultMinWager      = 100
	defaultStalenessSecs = 60
)

// EnsureConfig cria a linha singleton de configuração caso ainda não exista
// Idempotente: chamadas seguintes não alteram nada
func (p *Postgres) EnsureConfig(ctx context.Context, owner, assetRef, oracleRef string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO platform_config (
			id, owner_id, asset_reference, round_duration_secs,
			winners_bps, affiliates_bps, jackpot_bps, platform_bps,
			tier5_bps, tier6_bps, tier7_bps, tier8_bps, tier9_bps, tier10_bps,
			min_wager, oracle_reference, staleness_secs
		) VALUES (1,$1,$2,$3,$4,$5,$6,$7,100,200,300,400,500,1000,$8,$9,$10)
		ON CONFLICT (id) DO NOTHING`,
		owner, assetRef, defaultDurationSecs,
		defaultWinnersBps, defaultAffiliatesBps, defaultJackpotBps, defaultPlatformBps,
		defaultMinWager, oracleRef, defaultStalenessSecs,
	)
	return err
}

// Config retorna a configuração corrente (leitura sem lock)
func (p *Postgres) Config(ctx context.Context) (*engine.PlatformConfig, error) {
	return scanConfig(p.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM platform_config WHERE id=1`))
}

// mutateConfig trava a configuração, aplica a mutação do dono e persiste
// A mutação só roda se o caller for o dono registrado
func (p *Postgres) mutateConfig(ctx context.Context, caller string, fn func(cfg *engine.PlatformConfig) error) error {
	return p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := lockConfig(ctx, tx)
		if err != nil {
			return err
		}
		if caller != cfg.Owner {
			return engine.ErrNotOwner
		}
		if err := fn(cfg); err != nil {
			return err
		}
		return saveConfig(ctx, tx, cfg)
	})
}

// SetDuration ajusta a duração das rodadas; zero é rejeitado
func (p *Postgres) SetDuration(ctx context.Context, caller string, d time.Duration) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		if d <= 0 {
			return engine.ErrZeroDuration
		}
		cfg.RoundDuration = d
		return nil
	})
}

// SetAllocation ajusta o rateio; as fatias precisam somar 10000 bps
func (p *Postgres) SetAllocation(ctx context.Context, caller string, a engine.Allocation) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		if err := a.Validate(); err != nil {
			return err
		}
		cfg.Allocation = a
		return nil
	})
}

// SetJackpotTiers ajusta os tiers de bônus; precisam ser não-decrescentes
func (p *Postgres) SetJackpotTiers(ctx context.Context, caller string, t engine.JackpotTiers) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		if err := t.Validate(); err != nil {
			return err
		}
		cfg.JackpotTiers = t
		return nil
	})
}

// SetMinWager ajusta a aposta mínima admissível
func (p *Postgres) SetMinWager(ctx context.Context, caller string, amount uint64) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		cfg.MinWager = amount
		return nil
	})
}

// SetOracleReference troca o feed de preço; referência vazia é rejeitada
func (p *Postgres) SetOracleReference(ctx context.Context, caller, reference string) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		if reference == "" {
			return engine.ErrEmptyOracleReference
		}
		cfg.OracleReference = reference
		return nil
	})
}

// SetStalenessTolerance ajusta a idade máxima aceitável de uma amostra
func (p *Postgres) SetStalenessTolerance(ctx context.Context, caller string, d time.Duration) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		cfg.StalenessTolerance = d
		return nil
	})
}

// TransferOwnership troca o dono da plataforma com dupla autorização:
// o dono atual assina e o novo dono cossina a mesma chamada
func (p *Postgres) TransferOwnership(ctx context.Context, caller, coSigner, newOwner string) error {
	return p.mutateConfig(ctx, caller, func(cfg *engine.PlatformConfig) error {
		if newOwner == "" || coSigner != newOwner {
			return engine.ErrOwnerCoSign
		}
		cfg.Owner = newOwner
		return nil
	})
}

// CollectPlatformFees paga o acumulador inteiro de taxas ao dono e o zera
func (p *Postgres) CollectPlatformFees(ctx context.Context, caller string) (uint64, error) {
	var amount uint64
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		cfg, err := lockConfig(ctx, tx)
		if err != nil {
			return err
		}
		amount, err = engine.CollectPlatformFees(cfg, caller)
		if err != nil {
			return err
		}
		return saveConfig(ctx, tx, cfg)
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}
