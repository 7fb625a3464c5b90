package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimUserWinningsPaysOnce(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 100, 100, 150)

	acct := &UserAccount{UserID: "u1"}
	w := &Wager{UserID: "u1", RoundIndex: r.Index, Amount: 100, Side: SideLong}

	payout, bonus, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)
	assert.Equal(t, uint64(145), payout) // 100 de principal + 45 de lucro
	assert.Equal(t, uint64(0), bonus)
	assert.Equal(t, uint64(145), acct.AvailableAmount)
	assert.True(t, w.ClaimedByUser)

	_, _, err = ClaimUserWinnings(cfg, acct, r, w)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, uint64(145), acct.AvailableAmount)
}

func TestClaimUserWinningsRequiresClosedRound(t *testing.T) {
	cfg := testConfig()
	acct := &UserAccount{UserID: "u1"}
	w := &Wager{UserID: "u1", Amount: 100, Side: SideLong}

	_, _, err := ClaimUserWinnings(cfg, acct, nil, w)
	assert.ErrorIs(t, err, ErrRoundNotClosed)

	open := &Round{Index: 1, StartPrice: 100, LongTotal: 100}
	_, _, err = ClaimUserWinnings(cfg, acct, open, w)
	assert.ErrorIs(t, err, ErrRoundNotClosed)
}

func TestClaimLosingSideIneligible(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 100, 100, 150)

	acct := &UserAccount{UserID: "u2"}
	w := &Wager{UserID: "u2", RoundIndex: r.Index, Amount: 100, Side: SideShort}

	_, _, err := ClaimUserWinnings(cfg, acct, r, w)
	assert.ErrorIs(t, err, ErrIneligible)
	assert.False(t, w.ClaimedByUser)
	assert.Equal(t, uint64(0), acct.AvailableAmount)
}

func TestClaimTieIneligibleForBothSides(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 100, 100, 100)

	long := &Wager{UserID: "u1", RoundIndex: r.Index, Amount: 100, Side: SideLong, ReferrerSnapshot: "a1"}
	short := &Wager{UserID: "u2", RoundIndex: r.Index, Amount: 100, Side: SideShort}

	_, _, err := ClaimUserWinnings(cfg, &UserAccount{UserID: "u1"}, r, long)
	assert.ErrorIs(t, err, ErrIneligible)
	_, _, err = ClaimUserWinnings(cfg, &UserAccount{UserID: "u2"}, r, short)
	assert.ErrorIs(t, err, ErrIneligible)

	_, err = ClaimAffiliateWinnings(cfg.Allocation, r, long, "a1")
	assert.ErrorIs(t, err, ErrIneligible)
}

func TestClaimPrincipalOnlyWithoutLosers(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 0, 100, 150)

	acct := &UserAccount{UserID: "u1"}
	w := &Wager{UserID: "u1", RoundIndex: r.Index, Amount: 100, Side: SideLong}

	payout, bonus, err := ClaimUserWinnings(cfg, acct, r, w)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), payout)
	assert.Equal(t, uint64(0), bonus)
}

func TestClaimAffiliateIndependentOfUserClaim(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 100, 100, 150)

	w := &Wager{UserID: "u1", RoundIndex: r.Index, Amount: 100, Side: SideLong, ReferrerSnapshot: "aff"}

	// Afiliado saca antes do usuário, em qualquer ordem
	amount, err := ClaimAffiliateWinnings(cfg.Allocation, r, w, "aff")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), amount) // 500bps de 100
	assert.True(t, w.ClaimedByAffiliate)

	_, err = ClaimAffiliateWinnings(cfg.Allocation, r, w, "aff")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	payout, _, err := ClaimUserWinnings(cfg, &UserAccount{UserID: "u1"}, r, w)
	require.NoError(t, err)
	assert.Equal(t, uint64(145), payout)
}

func TestClaimAffiliateRequiresSnapshotMatch(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 100, 100, 150)

	withRef := &Wager{UserID: "u1", RoundIndex: r.Index, Amount: 100, Side: SideLong, ReferrerSnapshot: "aff"}
	_, err := ClaimAffiliateWinnings(cfg.Allocation, r, withRef, "intruso")
	assert.ErrorIs(t, err, ErrIneligible)

	noRef := &Wager{UserID: "u2", RoundIndex: r.Index, Amount: 100, Side: SideLong}
	_, err = ClaimAffiliateWinnings(cfg.Allocation, r, noRef, "aff")
	assert.ErrorIs(t, err, ErrIneligible)
}

func TestClaimAffiliateProportionalToWager(t *testing.T) {
	cfg := testConfig()
	r, _ := closedRound(t, cfg, 100, 100, 100, 150)

	w1 := &Wager{UserID: "u1", RoundIndex: r.Index, Amount: 60, Side: SideLong, ReferrerSnapshot: "aff"}
	w2 := &Wager{UserID: "u2", RoundIndex: r.Index, Amount: 40, Side: SideLong, ReferrerSnapshot: "aff"}

	a1, err := ClaimAffiliateWinnings(cfg.Allocation, r, w1, "aff")
	require.NoError(t, err)
	a2, err := ClaimAffiliateWinnings(cfg.Allocation, r, w2, "aff")
	require.NoError(t, err)

	// Fatia de afiliados = 5; rateada 60/40 com arredondamento pra baixo
	assert.Equal(t, uint64(3), a1)
	assert.Equal(t, uint64(2), a2)
}

func TestCollectPlatformFees(t *testing.T) {
	cfg := testConfig()
	cfg.UncollectedPlatformFees = 77

	_, err := CollectPlatformFees(cfg, "intruso")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, uint64(77), cfg.UncollectedPlatformFees)

	amount, err := CollectPlatformFees(cfg, "owner")
	require.NoError(t, err)
	assert.Equal(t, uint64(77), amount)
	assert.Equal(t, uint64(0), cfg.UncollectedPlatformFees)

	_, err = CollectPlatformFees(cfg, "owner")
	assert.ErrorIs(t, err, ErrNothingToCollect)
}
