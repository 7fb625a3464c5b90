package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	pcache "github.com/radieske/updown-bet-platform-poc/internal/price-service/cache"
	phttp "github.com/radieske/updown-bet-platform-poc/internal/price-service/http"
	prepo "github.com/radieske/updown-bet-platform-poc/internal/price-service/repo"
	"github.com/radieske/updown-bet-platform-poc/internal/price-service/ws"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/config"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/db"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres (leitura)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de leitura + pub/sub do WS)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// deps
	api := &phttp.API{
		ReadRepo: &prepo.ReadRepo{DB: pg},
		Cache:    pcache.New(rdb),
	}

	// WS hub + assinante Redis que repassa amostras aos clientes
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ws.StartRedisSubscriber(ctx, rdb, hub)

	// Roteador público: REST + WS
	root := chi.NewRouter()
	root.Mount("/", api.Router())
	root.Get("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: root,
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		hctx, hcancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer hcancel()
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

	log.Info("price-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
