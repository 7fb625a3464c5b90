package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "round-service")

	cfg := Load()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "round-service", cfg.ServiceName)
	assert.Equal(t, "price_updates", cfg.TopicPriceUpdates)
	assert.Equal(t, "round_opened", cfg.TopicRoundOpened)
	assert.Equal(t, "SOL-USD", cfg.OracleReference)
	assert.True(t, cfg.OracleEnforceStaleness)
}

func TestLoadPortsPerService(t *testing.T) {
	cases := []struct {
		service     string
		httpPort    string
		metricsPort string
	}{
		{"wallet-service", "8082", "9098"},
		{"round-service", "8083", "9099"},
		{"price-ingest-service", "", "9096"},
		{"price-processor-worker", "", "9097"},
		{"round-runner-worker", "", "9093"},
		{"price-service", "8080", "9095"},
		{"price-feed-simulator", "8081", "9094"},
		{"api-gateway", "8090", "9092"},
	}
	for _, tc := range cases {
		t.Run(tc.service, func(t *testing.T) {
			t.Setenv("SERVICE_NAME", tc.service)
			cfg := Load()
			assert.Equal(t, tc.httpPort, cfg.HTTPPort)
			assert.Equal(t, tc.metricsPort, cfg.MetricsPort)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "round-service")
	t.Setenv("HTTP_PORT_ROUND", "18083")
	t.Setenv("ORACLE_ENFORCE_STALENESS", "false")
	t.Setenv("ORACLE_REFERENCE", "BTC-USD")

	cfg := Load()

	assert.Equal(t, "18083", cfg.HTTPPort)
	assert.False(t, cfg.OracleEnforceStaleness)
	assert.Equal(t, "BTC-USD", cfg.OracleReference)
}
