package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRoundSequencesIndexes(t *testing.T) {
	cfg := testConfig()

	r1, err := OpenRound(cfg, nil, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r1.Index)
	assert.Equal(t, uint64(1), cfg.RoundCounter)

	r1.Closed = true
	r2, err := OpenRound(cfg, r1, time.Now(), 120)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r2.Index)
}

func TestOpenRoundRequiresPreviousClosed(t *testing.T) {
	cfg := testConfig()

	prev, err := OpenRound(cfg, nil, time.Now(), 100)
	require.NoError(t, err)

	_, err = OpenRound(cfg, prev, time.Now(), 120)
	assert.ErrorIs(t, err, ErrPreviousRoundOpen)
	assert.Equal(t, uint64(1), cfg.RoundCounter)
}

func TestOpenRoundRejectsZeroPrice(t *testing.T) {
	cfg := testConfig()
	_, err := OpenRound(cfg, nil, time.Now(), 0)
	assert.ErrorIs(t, err, ErrZeroPrice)
}

func TestPlaceWagerValidation(t *testing.T) {
	cfg := testConfig()
	cfg.MinWager = 100
	r, err := OpenRound(cfg, nil, time.Now(), 100)
	require.NoError(t, err)

	acct := &UserAccount{UserID: "u1", AvailableAmount: 1000}

	_, err = PlaceWager(cfg, acct, nil, 100, SideLong)
	assert.ErrorIs(t, err, ErrRoundNotFound)

	_, err = PlaceWager(cfg, acct, r, 0, SideLong)
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = PlaceWager(cfg, acct, r, 99, SideLong)
	assert.ErrorIs(t, err, ErrBelowMinWager)

	_, err = PlaceWager(cfg, acct, r, 5000, SideLong)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(1000), acct.AvailableAmount) // falha não debita

	closed := &Round{Index: 9, Closed: true, StartPrice: 100}
	_, err = PlaceWager(cfg, acct, closed, 100, SideLong)
	assert.ErrorIs(t, err, ErrRoundClosed)
}

func TestPlaceWagerDebitsAndAggregates(t *testing.T) {
	cfg := testConfig()
	r, err := OpenRound(cfg, nil, time.Now(), 100)
	require.NoError(t, err)

	long := &UserAccount{UserID: "u1", AvailableAmount: 500, Referrer: "aff"}
	short := &UserAccount{UserID: "u2", AvailableAmount: 300}

	w1, err := PlaceWager(cfg, long, r, 200, SideLong)
	require.NoError(t, err)
	w2, err := PlaceWager(cfg, short, r, 300, SideShort)
	require.NoError(t, err)

	assert.Equal(t, uint64(300), long.AvailableAmount)
	assert.Equal(t, uint64(0), short.AvailableAmount)

	assert.Equal(t, "aff", w1.ReferrerSnapshot)
	assert.Equal(t, "", w2.ReferrerSnapshot)

	assert.Equal(t, uint64(1), r.LongCount)
	assert.Equal(t, uint64(1), r.ShortCount)
	assert.Equal(t, uint64(200), r.LongTotal)
	assert.Equal(t, uint64(300), r.ShortTotal)
	assert.Equal(t, uint64(1), r.AffiliatedLongCount)
	assert.Equal(t, uint64(0), r.AffiliatedShortCount)
}

// O snapshot do afiliado é congelado na aposta: trocar o referrer da conta
// depois não altera apostas já registradas
func TestPlaceWagerFreezesReferrer(t *testing.T) {
	cfg := testConfig()
	r, err := OpenRound(cfg, nil, time.Now(), 100)
	require.NoError(t, err)

	acct := &UserAccount{UserID: "u1", AvailableAmount: 500, Referrer: "aff-1"}
	w, err := PlaceWager(cfg, acct, r, 100, SideLong)
	require.NoError(t, err)

	acct.Referrer = "aff-2"
	assert.Equal(t, "aff-1", w.ReferrerSnapshot)
}

func TestAllocationValidate(t *testing.T) {
	valid := Allocation{WinnersBps: 4500, AffiliatesBps: 500, JackpotBps: 4000, PlatformBps: 1000}
	assert.NoError(t, valid.Validate())

	short := Allocation{WinnersBps: 4500, AffiliatesBps: 500, JackpotBps: 4000, PlatformBps: 999}
	assert.ErrorIs(t, short.Validate(), ErrInvalidAllocation)

	over := Allocation{WinnersBps: 9000, AffiliatesBps: 9000, JackpotBps: 9000, PlatformBps: 9000}
	assert.ErrorIs(t, over.Validate(), ErrInvalidAllocation)
}

func TestJackpotTiersValidate(t *testing.T) {
	assert.NoError(t, testTiers().Validate())

	decreasing := JackpotTiers{Tier5: 300, Tier6: 200, Tier7: 300, Tier8: 500, Tier9: 700, Tier10: 1000}
	assert.ErrorIs(t, decreasing.Validate(), ErrInvalidJackpotTiers)

	tooBig := JackpotTiers{Tier5: 100, Tier6: 200, Tier7: 300, Tier8: 500, Tier9: 700, Tier10: 10_001}
	assert.ErrorIs(t, tooBig.Validate(), ErrInvalidJackpotTiers)
}

func TestParseSide(t *testing.T) {
	long, err := ParseSide("LONG")
	require.NoError(t, err)
	assert.Equal(t, SideLong, long)

	_, err = ParseSide("UP")
	assert.ErrorIs(t, err, ErrInvalidSide)
	_, err = ParseSide("long")
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestMulDivDownFloors(t *testing.T) {
	assert.Equal(t, uint64(0), mulDivDown(1, 4999, 10_000))
	assert.Equal(t, uint64(45), mulDivDown(100, 4500, 10_000))

	// Sem overflow intermediário em valores próximos do limite
	const big = uint64(1) << 62
	assert.Equal(t, big/2, mulDivDown(big, 5000, 10_000))
}
