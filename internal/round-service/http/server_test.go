package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
	"github.com/radieske/updown-bet-platform-poc/pkg/contracts/events"
)

// stubLedger devolve respostas fixas ou o erro configurado
type stubLedger struct {
	err    error
	round  *engine.Round
	wager  *engine.Wager
	acct   *engine.UserAccount
	config *engine.PlatformConfig

	deposits  int
	withdraws int
}

func (s *stubLedger) Config(context.Context) (*engine.PlatformConfig, error) {
	if s.config != nil {
		return s.config, nil
	}
	return &engine.PlatformConfig{OracleReference: "SOL-USD", StalenessTolerance: time.Minute}, nil
}
func (s *stubLedger) SetDuration(context.Context, string, time.Duration) error    { return s.err }
func (s *stubLedger) SetAllocation(context.Context, string, engine.Allocation) error {
	return s.err
}
func (s *stubLedger) SetJackpotTiers(context.Context, string, engine.JackpotTiers) error {
	return s.err
}
func (s *stubLedger) SetMinWager(context.Context, string, uint64) error          { return s.err }
func (s *stubLedger) SetOracleReference(context.Context, string, string) error   { return s.err }
func (s *stubLedger) SetStalenessTolerance(context.Context, string, time.Duration) error {
	return s.err
}
func (s *stubLedger) TransferOwnership(context.Context, string, string, string) error { return s.err }
func (s *stubLedger) CollectPlatformFees(context.Context, string) (uint64, error) {
	return 50, s.err
}

func (s *stubLedger) Deposit(context.Context, string, uint64) error {
	s.deposits++
	return s.err
}
func (s *stubLedger) Withdraw(context.Context, string, uint64) error {
	s.withdraws++
	return s.err
}
func (s *stubLedger) SetReferrer(context.Context, string, string) error { return s.err }
func (s *stubLedger) Account(context.Context, string) (*engine.UserAccount, error) {
	return s.acct, s.err
}

func (s *stubLedger) OpenRound(context.Context, time.Time, uint64) (*engine.Round, error) {
	return s.round, s.err
}
func (s *stubLedger) CloseRound(context.Context, uint64, time.Time, uint64) (*engine.Round, engine.Settlement, error) {
	return s.round, engine.Settlement{}, s.err
}
func (s *stubLedger) Round(context.Context, uint64) (*engine.Round, error) {
	return s.round, s.err
}
func (s *stubLedger) CurrentRound(context.Context) (*engine.Round, error) {
	return s.round, s.err
}
func (s *stubLedger) PlaceWager(context.Context, string, uint64, engine.Side) (*engine.Wager, error) {
	return s.wager, s.err
}
func (s *stubLedger) Wager(context.Context, string, uint64) (*engine.Wager, error) {
	return s.wager, s.err
}
func (s *stubLedger) ClaimUserWinnings(context.Context, string, uint64) (uint64, uint64, error) {
	return 145, 0, s.err
}
func (s *stubLedger) ClaimAffiliateWinnings(context.Context, string, string, uint64) (uint64, error) {
	return 5, s.err
}

type stubOracle struct {
	price uint64
	err   error
}

func (o *stubOracle) SamplePrice(context.Context, string, time.Duration) (uint64, error) {
	return o.price, o.err
}

type stubCustodian struct {
	inErr, outErr error
	ins, outs     int
}

func (c *stubCustodian) TransferIn(context.Context, string, uint64, string) error {
	c.ins++
	return c.inErr
}
func (c *stubCustodian) TransferOut(context.Context, string, uint64, string) error {
	c.outs++
	return c.outErr
}

type stubPublisher struct{ published int }

func (p *stubPublisher) PublishRoundOpened(context.Context, events.RoundOpened) error {
	p.published++
	return nil
}
func (p *stubPublisher) PublishRoundClosed(context.Context, events.RoundClosed) error {
	p.published++
	return nil
}
func (p *stubPublisher) PublishWagerPlaced(context.Context, events.WagerPlaced) error {
	p.published++
	return nil
}
func (p *stubPublisher) PublishWinningsClaimed(context.Context, events.WinningsClaimed) error {
	p.published++
	return nil
}

func newTestServer(l *stubLedger, o *stubOracle, c *stubCustodian, p *stubPublisher) *Server {
	if o == nil {
		o = &stubOracle{price: 100}
	}
	if c == nil {
		c = &stubCustodian{}
	}
	if p == nil {
		p = &stubPublisher{}
	}
	return NewServer(zap.NewNop(), l, o, c, p)
}

func doJSON(t *testing.T, h http.Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMapStatusByKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrZeroAmount, http.StatusBadRequest},
		{engine.ErrInvalidSide, http.StatusBadRequest},
		{engine.ErrNotOwner, http.StatusForbidden},
		{engine.ErrWrongCaller, http.StatusForbidden},
		{engine.ErrRoundClosed, http.StatusConflict},
		{engine.ErrWagerExists, http.StatusConflict},
		{engine.ErrRoundNotFound, http.StatusNotFound},
		{engine.ErrWagerNotFound, http.StatusNotFound},
		{engine.ErrAlreadyClaimed, http.StatusUnprocessableEntity},
		{engine.ErrIneligible, http.StatusUnprocessableEntity},
		{engine.ErrInsufficientFunds, http.StatusPaymentRequired},
		{engine.ErrStalePrice, http.StatusServiceUnavailable},
		{engine.ErrZeroPrice, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapStatus(tc.err), tc.err.Error())
	}
}

func TestPlaceWagerRejectsWrongCaller(t *testing.T) {
	srv := newTestServer(&stubLedger{}, nil, nil, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/wagers", "intruso",
		map[string]any{"userId": "u1", "amount": 100, "side": "LONG"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPlaceWagerRejectsInvalidSide(t *testing.T) {
	srv := newTestServer(&stubLedger{}, nil, nil, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/wagers", "u1",
		map[string]any{"userId": "u1", "amount": 100, "side": "UP"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceWagerPublishesEvent(t *testing.T) {
	publ := &stubPublisher{}
	ledger := &stubLedger{wager: &engine.Wager{UserID: "u1", RoundIndex: 1, Amount: 100, Side: engine.SideLong}}
	srv := newTestServer(ledger, nil, nil, publ)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/wagers", "u1",
		map[string]any{"userId": "u1", "amount": 100, "side": "LONG"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, publ.published)
}

func TestOpenRoundFailsWhenOracleStale(t *testing.T) {
	srv := newTestServer(&stubLedger{}, &stubOracle{err: engine.ErrStalePrice}, nil, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/rounds/open", "runner", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenRoundReturnsCreated(t *testing.T) {
	ledger := &stubLedger{round: &engine.Round{Index: 7, OpenTime: time.Now(), StartPrice: 100}}
	publ := &stubPublisher{}
	srv := newTestServer(ledger, nil, nil, publ)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/rounds/open", "runner", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, publ.published)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(7), resp["index"])
}

func TestGetRoundNotFound(t *testing.T) {
	srv := newTestServer(&stubLedger{err: engine.ErrRoundNotFound}, nil, nil, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/v1/rounds/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDepositRollsBackOnLedgerFailure(t *testing.T) {
	cust := &stubCustodian{}
	ledger := &stubLedger{err: engine.ErrZeroAmount}
	srv := newTestServer(ledger, nil, cust, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/balance/deposit", "u1",
		map[string]any{"userId": "u1", "amount": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, cust.ins)
	assert.Equal(t, 1, cust.outs) // devolução após falha do crédito interno
}

func TestWithdrawRefundsOnCustodianFailure(t *testing.T) {
	cust := &stubCustodian{outErr: context.DeadlineExceeded}
	ledger := &stubLedger{}
	srv := newTestServer(ledger, nil, cust, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/balance/withdraw", "u1",
		map[string]any{"userId": "u1", "amount": 100})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, ledger.withdraws)
	assert.Equal(t, 1, ledger.deposits) // estorno do débito interno
}

func TestClaimUserReturnsPayout(t *testing.T) {
	srv := newTestServer(&stubLedger{}, nil, nil, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/claims/user", "u1",
		map[string]any{"userId": "u1", "roundIndex": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(145), resp["payout"])
}

func TestTransferOwnershipForwardsCoSigner(t *testing.T) {
	srv := newTestServer(&stubLedger{err: engine.ErrOwnerCoSign}, nil, nil, nil)
	router := srv.Router()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"newOwner": "n1"}))
	req := httptest.NewRequest(http.MethodPost, "/v1/platform/owner", &buf)
	req.Header.Set("X-Caller", "owner")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
