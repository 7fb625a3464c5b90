package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/shared/config"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/metrics"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	prices := rp(cfg.PriceURL)
	wallet := rp(cfg.WalletURL)
	rounds := rp(cfg.RoundURL)

	mux := http.NewServeMux()

	// preços (ex.: /api/prices/* -> price-service)
	mux.Handle("/api/prices/", http.StripPrefix("/api/prices", prices))

	// wallet (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// rodadas, apostas e prêmios (ex.: /api/rounds/* -> round-service)
	mux.Handle("/api/rounds/", http.StripPrefix("/api/rounds", rounds))

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Caller, X-Co-Signer")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
