package oracle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
)

func TestValidateAcceptsFreshSample(t *testing.T) {
	now := time.Now()
	s := Sample{Reference: "SOL-USD", Price: 150_000_000, ObservedAt: now.Add(-10 * time.Second)}

	assert.NoError(t, Validate(s, now, time.Minute, true))
}

func TestValidateRejectsZeroPrice(t *testing.T) {
	now := time.Now()
	s := Sample{Reference: "SOL-USD", Price: 0, ObservedAt: now}

	assert.ErrorIs(t, Validate(s, now, time.Minute, true), engine.ErrZeroPrice)
	// Preço zero falha mesmo com staleness desligada
	assert.ErrorIs(t, Validate(s, now, time.Minute, false), engine.ErrZeroPrice)
}

func TestValidateRejectsStaleSample(t *testing.T) {
	now := time.Now()
	s := Sample{Reference: "SOL-USD", Price: 150_000_000, ObservedAt: now.Add(-2 * time.Minute)}

	assert.ErrorIs(t, Validate(s, now, time.Minute, true), engine.ErrStalePrice)
}

func TestValidateStalenessTogglable(t *testing.T) {
	now := time.Now()
	s := Sample{Reference: "SOL-USD", Price: 150_000_000, ObservedAt: now.Add(-2 * time.Minute)}

	assert.NoError(t, Validate(s, now, time.Minute, false))
}

func TestCurrentKey(t *testing.T) {
	assert.Equal(t, "price:current:SOL-USD", CurrentKey("SOL-USD"))
}
