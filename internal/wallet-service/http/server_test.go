package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/wallet-service/repo"
)

// stubRepo simula a carteira em memória para os handlers
type stubRepo struct {
	balance int64
	err     error
}

func (s *stubRepo) GetOrCreateWallet(context.Context, string) (string, int64, error) {
	return "w1", s.balance, nil
}
func (s *stubRepo) Fund(_ context.Context, _ string, amount int64, _ string) (string, int64, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	s.balance += amount
	return "w1", s.balance, nil
}
func (s *stubRepo) Debit(_ context.Context, _ string, amount int64, _ string) (string, int64, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	s.balance -= amount
	return "w1", s.balance, nil
}
func (s *stubRepo) Credit(_ context.Context, _ string, amount int64, _ string) (string, int64, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	s.balance += amount
	return "w1", s.balance, nil
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFundIncreasesBalance(t *testing.T) {
	srv := NewServer(zap.NewNop(), &stubRepo{})
	router := srv.Router()

	rec := post(t, router, "/wallet/fund", map[string]any{"userId": "u1", "amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(500), resp["balance"])
}

func TestDebitRequiresExternalRef(t *testing.T) {
	srv := NewServer(zap.NewNop(), &stubRepo{balance: 500})
	router := srv.Router()

	rec := post(t, router, "/wallet/debit", map[string]any{"userId": "u1", "amount": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDebitInsufficientFundsConflicts(t *testing.T) {
	srv := NewServer(zap.NewNop(), &stubRepo{err: repo.ErrInsufficientFunds})
	router := srv.Router()

	rec := post(t, router, "/wallet/debit",
		map[string]any{"userId": "u1", "amount": 100, "external_ref": "op-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDebitUnknownWalletNotFound(t *testing.T) {
	srv := NewServer(zap.NewNop(), &stubRepo{err: repo.ErrNotFound})
	router := srv.Router()

	rec := post(t, router, "/wallet/debit",
		map[string]any{"userId": "ghost", "amount": 100, "external_ref": "op-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWalletRequiresUserID(t *testing.T) {
	srv := NewServer(zap.NewNop(), &stubRepo{})
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
