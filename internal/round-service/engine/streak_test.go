package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTiers() JackpotTiers {
	return JackpotTiers{Tier5: 100, Tier6: 200, Tier7: 300, Tier8: 500, Tier9: 700, Tier10: 1000}
}

// wonRound produz uma rodada fechada com vitória long e o wager do usuário
func wonRound(index uint64, userID string, amount uint64) (*Round, *Wager) {
	r := &Round{
		Index:      index,
		StartPrice: 100,
		EndPrice:   150,
		Closed:     true,
		LongTotal:  amount,
		ShortTotal: 100,
	}
	w := &Wager{UserID: userID, RoundIndex: index, Amount: amount, Side: SideLong}
	return r, w
}

func TestStreakIncrementsOnConsecutiveWins(t *testing.T) {
	cfg := testConfig()
	cfg.JackpotTiers = testTiers()
	acct := &UserAccount{UserID: "u1"}

	for i := uint64(1); i <= 3; i++ {
		r, w := wonRound(i, "u1", 100)
		_, _, err := ClaimUserWinnings(cfg, acct, r, w)
		require.NoError(t, err)
		assert.Equal(t, i, acct.ConsecutiveWins)
		assert.Equal(t, i, acct.LastWonRound)
	}
}

func TestStreakResetsAfterGap(t *testing.T) {
	cfg := testConfig()
	cfg.JackpotTiers = testTiers()
	acct := &UserAccount{UserID: "u1", LastWonRound: 3, ConsecutiveWins: 3}

	// Rodada 5: a 4 não foi vencida, a contagem recomeça
	r, w := wonRound(5, "u1", 100)
	_, _, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), acct.ConsecutiveWins)
	assert.Equal(t, uint64(5), acct.LastWonRound)
}

func TestStreakTier5BonusPaidFromPool(t *testing.T) {
	cfg := testConfig()
	cfg.JackpotTiers = testTiers()
	cfg.JackpotPool = 1000
	acct := &UserAccount{UserID: "u1", LastWonRound: 4, ConsecutiveWins: 4}

	r, w := wonRound(5, "u1", 100)
	payout, bonus, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)

	assert.Equal(t, uint64(145), payout)
	assert.Equal(t, uint64(10), bonus) // 100bps do pool de 1000 no momento do claim
	assert.Equal(t, uint64(990), cfg.JackpotPool)
	assert.Equal(t, uint64(5), acct.ConsecutiveWins)
	assert.Equal(t, uint64(145+10), acct.AvailableAmount)
}

func TestStreakNoBonusBelowTier5(t *testing.T) {
	cfg := testConfig()
	cfg.JackpotTiers = testTiers()
	cfg.JackpotPool = 1000
	acct := &UserAccount{UserID: "u1", LastWonRound: 2, ConsecutiveWins: 2}

	r, w := wonRound(3, "u1", 100)
	_, bonus, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bonus)
	assert.Equal(t, uint64(1000), cfg.JackpotPool)
}

func TestStreakNoBonusWithEmptyPool(t *testing.T) {
	cfg := testConfig()
	cfg.JackpotTiers = testTiers()
	acct := &UserAccount{UserID: "u1", LastWonRound: 4, ConsecutiveWins: 4}

	r, w := wonRound(5, "u1", 100)
	_, bonus, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bonus)
	assert.Equal(t, uint64(5), acct.ConsecutiveWins) // a contagem avança mesmo sem pool
}

func TestStreakResetsToZeroAfterTopTier(t *testing.T) {
	cfg := testConfig()
	cfg.JackpotTiers = testTiers()
	cfg.JackpotPool = 10_000
	acct := &UserAccount{UserID: "u1", LastWonRound: 9, ConsecutiveWins: 9}

	r, w := wonRound(10, "u1", 100)
	_, bonus, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), bonus) // 1000bps do pool de 10000
	assert.Equal(t, uint64(9000), cfg.JackpotPool)
	assert.Equal(t, uint64(0), acct.ConsecutiveWins)
	assert.Equal(t, uint64(10), acct.LastWonRound)
}

func TestForStreakMapping(t *testing.T) {
	tiers := testTiers()

	assert.Equal(t, uint16(0), tiers.ForStreak(0))
	assert.Equal(t, uint16(0), tiers.ForStreak(4))
	assert.Equal(t, uint16(100), tiers.ForStreak(5))
	assert.Equal(t, uint16(700), tiers.ForStreak(9))
	assert.Equal(t, uint16(1000), tiers.ForStreak(10))
	assert.Equal(t, uint16(1000), tiers.ForStreak(17))
}
