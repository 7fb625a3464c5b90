package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/shared/config"
	"github.com/radieske/updown-bet-platform-poc/internal/shared/logger"
)

// Métricas Prometheus do ciclo de rodadas
var (
	roundsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runner_rounds_opened_total",
		Help: "Rodadas abertas pelo runner",
	})
	roundsClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runner_rounds_closed_total",
		Help: "Rodadas encerradas pelo runner",
	})
	tickErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runner_tick_errors_total",
		Help: "Erros por etapa do ciclo",
	}, []string{"stage"})
)

// roundState é o subconjunto da resposta do round-service usado pelo runner
type roundState struct {
	Index    uint64 `json:"index"`
	OpenTime string `json:"openTime"`
	Closed   bool   `json:"closed"`
}

type platformState struct {
	RoundCounter      uint64 `json:"roundCounter"`
	RoundDurationSecs uint64 `json:"roundDurationSecs"`
}

// runner dirige o ciclo de vida das rodadas via API do round-service
// Encerra a rodada corrente quando a duração expira e abre a próxima
type runner struct {
	log     *zap.Logger
	baseURL string
	http    *http.Client
}

// tick executa uma iteração do ciclo: fecha a rodada vencida e abre a próxima
func (r *runner) tick(ctx context.Context) {
	cfg, err := r.platform(ctx)
	if err != nil {
		r.log.Warn("platform config fetch failed", zap.Error(err))
		tickErrors.WithLabelValues("config").Inc()
		return
	}

	// Sem rodadas ainda: abre a primeira
	if cfg.RoundCounter == 0 {
		r.open(ctx)
		return
	}

	cur, err := r.currentRound(ctx)
	if err != nil {
		r.log.Warn("current round fetch failed", zap.Error(err))
		tickErrors.WithLabelValues("current").Inc()
		return
	}

	if cur.Closed {
		r.open(ctx)
		return
	}

	openTime, err := time.Parse(time.RFC3339, cur.OpenTime)
	if err != nil {
		r.log.Warn("bad openTime", zap.String("openTime", cur.OpenTime), zap.Error(err))
		tickErrors.WithLabelValues("parse").Inc()
		return
	}

	elapsed := time.Since(openTime)
	if elapsed < time.Duration(cfg.RoundDurationSecs)*time.Second {
		return // rodada ainda em andamento
	}

	if err := r.close(ctx, cur.Index); err != nil {
		r.log.Warn("close round failed", zap.Uint64("index", cur.Index), zap.Error(err))
		tickErrors.WithLabelValues("close").Inc()
		return
	}
	roundsClosed.Inc()
	r.log.Info("round closed", zap.Uint64("index", cur.Index), zap.Duration("elapsed", elapsed))

	r.open(ctx)
}

func (r *runner) open(ctx context.Context) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/rounds/open", nil)
	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Warn("open round failed", zap.Error(err))
		tickErrors.WithLabelValues("open").Inc()
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		// Oráculo indisponível ou rodada anterior ainda aberta: tenta no próximo tick
		r.log.Warn("open round rejected", zap.Int("status", resp.StatusCode))
		tickErrors.WithLabelValues("open").Inc()
		return
	}
	var opened roundState
	if err := json.NewDecoder(resp.Body).Decode(&opened); err == nil {
		r.log.Info("round opened", zap.Uint64("index", opened.Index))
	}
	roundsOpened.Inc()
}

func (r *runner) close(ctx context.Context, index uint64) error {
	url := fmt.Sprintf("%s/v1/rounds/%d/close", r.baseURL, index)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("round close http " + resp.Status)
	}
	return nil
}

func (r *runner) platform(ctx context.Context) (*platformState, error) {
	var out platformState
	if err := r.getJSON(ctx, "/v1/platform/config", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runner) currentRound(ctx context.Context) (*roundState, error) {
	var out roundState
	if err := r.getJSON(ctx, "/v1/rounds/current", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runner) getJSON(ctx context.Context, path string, dst any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("round-service http " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(roundsOpened, roundsClosed, tickErrors)

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	r := &runner{
		log:     log,
		baseURL: cfg.RoundURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("round-runner started", zap.String("round_service", cfg.RoundURL))

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("round-runner stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
