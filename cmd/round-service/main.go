package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/custodian"
	rhttp "github.com/radieske/updown-bet-platform-poc/internal/round-service/http"
	"github.com/radieske/updown-bet-platform-poc/internal/round-service/oracle"
	kpub "github.com/radieske/updown-bet-platform-poc/internal/round-service/producer"
	"github.com/radieske/updown-bet-platform-poc/internal/round-service/repo"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/config"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/db"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (amostras do oráculo)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (um por tópico do ciclo de vida)
	publ := &kpub.KafkaPublisher{
		RoundOpened:     kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundOpened),
		RoundClosed:     kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundClosed),
		WagerPlaced:     kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerPlaced),
		WinningsClaimed: kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWinningsClaimed),
	}
	defer publ.RoundOpened.Close()
	defer publ.RoundClosed.Close()
	defer publ.WagerPlaced.Close()
	defer publ.WinningsClaimed.Close()

	// deps
	ledger := repo.NewPostgres(pg)

	ctx := context.Background()
	if err := ledger.EnsureSchema(ctx); err != nil {
		log.Fatal("schema", zap.Error(err))
	}
	if err := ledger.EnsureConfig(ctx, cfg.PlatformOwner, cfg.AssetReference, cfg.OracleReference); err != nil {
		log.Fatal("platform config", zap.Error(err))
	}

	orc := oracle.New(rdb, cfg.OracleEnforceStaleness)
	cust := custodian.New(cfg.WalletURL)

	// HTTP público
	api := rhttp.NewServer(log, ledger, orc, cust, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		hctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.PingContext(hctx); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(hctx).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("round-service listening",
		zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)),
		zap.String("oracle", cfg.OracleReference),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
