package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/updown-bet-platform-poc/internal/round-service/dto"
	"github.com/radieske/updown-bet-platform-poc/internal/round-service/engine"
	"github.com/radieske/updown-bet-platform-poc/pkg/contracts/events"
)

// Ledger define as operações do motor usadas pelos handlers HTTP
type Ledger interface {
	Config(ctx context.Context) (*engine.PlatformConfig, error)
	SetDuration(ctx context.Context, caller string, d time.Duration) error
	SetAllocation(ctx context.Context, caller string, a engine.Allocation) error
	SetJackpotTiers(ctx context.Context, caller string, t engine.JackpotTiers) error
	SetMinWager(ctx context.Context, caller string, amount uint64) error
	SetOracleReference(ctx context.Context, caller, reference string) error
	SetStalenessTolerance(ctx context.Context, caller string, d time.Duration) error
	TransferOwnership(ctx context.Context, caller, coSigner, newOwner string) error
	CollectPlatformFees(ctx context.Context, caller string) (uint64, error)

	Deposit(ctx context.Context, userID string, amount uint64) error
	Withdraw(ctx context.Context, userID string, amount uint64) error
	SetReferrer(ctx context.Context, userID, referrer string) error
	Account(ctx context.Context, userID string) (*engine.UserAccount, error)

	OpenRound(ctx context.Context, now time.Time, startPrice uint64) (*engine.Round, error)
	CloseRound(ctx context.Context, index uint64, now time.Time, endPrice uint64) (*engine.Round, engine.Settlement, error)
	Round(ctx context.Context, index uint64) (*engine.Round, error)
	CurrentRound(ctx context.Context) (*engine.Round, error)
	PlaceWager(ctx context.Context, userID string, amount uint64, side engine.Side) (*engine.Wager, error)
	Wager(ctx context.Context, userID string, index uint64) (*engine.Wager, error)
	ClaimUserWinnings(ctx context.Context, userID string, index uint64) (payout, bonus uint64, err error)
	ClaimAffiliateWinnings(ctx context.Context, affiliate, userID string, index uint64) (uint64, error)
}

// Oracle amostra o preço corrente do feed configurado
type Oracle interface {
	SamplePrice(ctx context.Context, reference string, tolerance time.Duration) (uint64, error)
}

// Custodian movimenta o token entre a carteira externa e a custódia
type Custodian interface {
	TransferIn(ctx context.Context, userID string, amount uint64, externalRef string) error
	TransferOut(ctx context.Context, userID string, amount uint64, externalRef string) error
}

// Publisher emite os eventos de ciclo de vida no Kafka
type Publisher interface {
	PublishRoundOpened(ctx context.Context, e events.RoundOpened) error
	PublishRoundClosed(ctx context.Context, e events.RoundClosed) error
	PublishWagerPlaced(ctx context.Context, e events.WagerPlaced) error
	PublishWinningsClaimed(ctx context.Context, e events.WinningsClaimed) error
}

// Server expõe a API HTTP do motor de rodadas
type Server struct {
	log    *zap.Logger
	ledger Ledger
	oracle Oracle
	cust   Custodian
	publ   Publisher
}

func NewServer(log *zap.Logger, l Ledger, o Oracle, c Custodian, p Publisher) *Server {
	return &Server{log: log, ledger: l, oracle: o, cust: c, publ: p}
}

// Router retorna o roteador HTTP com os endpoints do motor
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/balance/{userId}", s.getBalance)
		r.Post("/balance/deposit", s.deposit)
		r.Post("/balance/withdraw", s.withdraw)
		r.Post("/balance/referrer", s.setReferrer)

		r.Post("/rounds/open", s.openRound)
		r.Post("/rounds/{index}/close", s.closeRound)
		r.Get("/rounds/current", s.getCurrentRound)
		r.Get("/rounds/{index}", s.getRound)

		r.Post("/wagers", s.placeWager)
		r.Get("/wagers/{userId}/{index}", s.getWager)

		r.Post("/claims/user", s.claimUser)
		r.Post("/claims/affiliate", s.claimAffiliate)

		r.Get("/platform/config", s.getConfig)
		r.Put("/platform/duration", s.setDuration)
		r.Put("/platform/allocation", s.setAllocation)
		r.Put("/platform/jackpot-tiers", s.setJackpotTiers)
		r.Put("/platform/min-wager", s.setMinWager)
		r.Put("/platform/oracle-reference", s.setOracleReference)
		r.Put("/platform/staleness", s.setStaleness)
		r.Post("/platform/owner", s.transferOwnership)
		r.Post("/platform/fees/withdraw", s.withdrawFees)
	})
	return r
}

// caller retorna a identidade declarada pelo chamador
// A verificação de assinatura fica no gateway; aqui só se compara identidade
func caller(r *http.Request) string { return r.Header.Get("X-Caller") }

// requireCaller rejeita chamadas em nome de outro usuário
func requireCaller(r *http.Request, userID string) error {
	if caller(r) != userID {
		return engine.ErrWrongCaller
	}
	return nil
}

// mapStatus traduz a categoria do erro em status HTTP
func mapStatus(err error) int {
	if errors.Is(err, engine.ErrRoundNotFound) || errors.Is(err, engine.ErrWagerNotFound) {
		return http.StatusNotFound
	}
	switch engine.KindOf(err) {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindAuthorization:
		return http.StatusForbidden
	case engine.KindState:
		return http.StatusConflict
	case engine.KindEligibility:
		return http.StatusUnprocessableEntity
	case engine.KindResource:
		return http.StatusPaymentRequired
	case engine.KindOracle:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	writeJSON(w, mapStatus(err), dto.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func roundIndex(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
}

func roundResponse(rd *engine.Round) dto.RoundResponse {
	resp := dto.RoundResponse{
		Index:                rd.Index,
		OpenTime:             rd.OpenTime.UTC().Format(time.RFC3339),
		StartPrice:           rd.StartPrice,
		EndPrice:             rd.EndPrice,
		Closed:               rd.Closed,
		LongCount:            rd.LongCount,
		ShortCount:           rd.ShortCount,
		LongTotal:            rd.LongTotal,
		ShortTotal:           rd.ShortTotal,
		AffiliatedLongCount:  rd.AffiliatedLongCount,
		AffiliatedShortCount: rd.AffiliatedShortCount,
	}
	if rd.Closed {
		resp.Outcome = rd.Outcome().String()
	}
	return resp
}

// getBalance retorna a conta custodiada do usuário
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	acct, err := s.ledger.Account(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		UserID:          acct.UserID,
		AvailableAmount: acct.AvailableAmount,
		Referrer:        acct.Referrer,
		LastWonRound:    acct.LastWonRound,
		ConsecutiveWins: acct.ConsecutiveWins,
	})
}

// deposit move o token para a custódia e credita o saldo disponível
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.BalanceRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := requireCaller(r, req.UserID); err != nil {
		s.fail(w, err)
		return
	}
	if req.Amount == 0 {
		s.fail(w, engine.ErrZeroAmount)
		return
	}

	ref := uuid.NewString()
	if err := s.cust.TransferIn(r.Context(), req.UserID, req.Amount, ref); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.ledger.Deposit(r.Context(), req.UserID, req.Amount); err != nil {
		// devolve o token se o crédito interno falhar
		if rbErr := s.cust.TransferOut(r.Context(), req.UserID, req.Amount, ref); rbErr != nil {
			s.log.Error("deposit rollback failed", zap.String("userId", req.UserID), zap.Error(rbErr))
		}
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// withdraw debita o saldo disponível e devolve o token ao usuário
func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.BalanceRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := requireCaller(r, req.UserID); err != nil {
		s.fail(w, err)
		return
	}

	if err := s.ledger.Withdraw(r.Context(), req.UserID, req.Amount); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.cust.TransferOut(r.Context(), req.UserID, req.Amount, uuid.NewString()); err != nil {
		// estorna o débito interno se a transferência externa falhar
		if rbErr := s.ledger.Deposit(r.Context(), req.UserID, req.Amount); rbErr != nil {
			s.log.Error("withdraw rollback failed", zap.String("userId", req.UserID), zap.Error(rbErr))
		}
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) setReferrer(w http.ResponseWriter, r *http.Request) {
	var req dto.SetReferrerRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := requireCaller(r, req.UserID); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.ledger.SetReferrer(r.Context(), req.UserID, req.Referrer); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// openRound amostra o oráculo e abre a próxima rodada; aberto a qualquer caller
func (s *Server) openRound(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.Config(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	price, err := s.oracle.SamplePrice(r.Context(), cfg.OracleReference, cfg.StalenessTolerance)
	if err != nil {
		s.fail(w, err)
		return
	}

	round, err := s.ledger.OpenRound(r.Context(), time.Now(), price)
	if err != nil {
		s.fail(w, err)
		return
	}

	_ = s.publ.PublishRoundOpened(r.Context(), events.RoundOpened{
		RoundIndex: round.Index,
		StartPrice: round.StartPrice,
		OpenTime:   round.OpenTime.Unix(),
	})

	writeJSON(w, http.StatusCreated, roundResponse(round))
}

// closeRound encerra a rodada e devolve o resultado da liquidação
func (s *Server) closeRound(w http.ResponseWriter, r *http.Request) {
	index, err := roundIndex(r)
	if err != nil {
		http.Error(w, "invalid round index", http.StatusBadRequest)
		return
	}
	cfg, err := s.ledger.Config(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	price, err := s.oracle.SamplePrice(r.Context(), cfg.OracleReference, cfg.StalenessTolerance)
	if err != nil {
		s.fail(w, err)
		return
	}

	round, stl, err := s.ledger.CloseRound(r.Context(), index, time.Now(), price)
	if err != nil {
		s.fail(w, err)
		return
	}

	_ = s.publ.PublishRoundClosed(r.Context(), events.RoundClosed{
		RoundIndex:          round.Index,
		StartPrice:          round.StartPrice,
		EndPrice:            round.EndPrice,
		Outcome:             stl.Outcome.String(),
		LosingPool:          stl.LosingPool,
		PlatformFee:         stl.PlatformFee,
		JackpotDelta:        stl.JackpotDelta,
		RedirectedToJackpot: stl.RedirectedToJackpot,
	})

	writeJSON(w, http.StatusOK, dto.SettlementResponse{
		Round:               roundResponse(round),
		LosingPool:          stl.LosingPool,
		PlatformFee:         stl.PlatformFee,
		JackpotDelta:        stl.JackpotDelta,
		RedirectedToJackpot: stl.RedirectedToJackpot,
	})
}

func (s *Server) getCurrentRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.ledger.CurrentRound(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse(round))
}

func (s *Server) getRound(w http.ResponseWriter, r *http.Request) {
	index, err := roundIndex(r)
	if err != nil {
		http.Error(w, "invalid round index", http.StatusBadRequest)
		return
	}
	round, err := s.ledger.Round(r.Context(), index)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse(round))
}

// placeWager registra a aposta do usuário na rodada corrente
func (s *Server) placeWager(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceWagerRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := requireCaller(r, req.UserID); err != nil {
		s.fail(w, err)
		return
	}
	side, err := engine.ParseSide(req.Side)
	if err != nil {
		s.fail(w, err)
		return
	}

	wager, err := s.ledger.PlaceWager(r.Context(), req.UserID, req.Amount, side)
	if err != nil {
		s.fail(w, err)
		return
	}

	_ = s.publ.PublishWagerPlaced(r.Context(), events.WagerPlaced{
		UserID:     wager.UserID,
		RoundIndex: wager.RoundIndex,
		Amount:     wager.Amount,
		Side:       string(wager.Side),
		Referrer:   wager.ReferrerSnapshot,
	})

	writeJSON(w, http.StatusCreated, wagerResponse(wager))
}

func (s *Server) getWager(w http.ResponseWriter, r *http.Request) {
	index, err := roundIndex(r)
	if err != nil {
		http.Error(w, "invalid round index", http.StatusBadRequest)
		return
	}
	wager, err := s.ledger.Wager(r.Context(), chi.URLParam(r, "userId"), index)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wagerResponse(wager))
}

func wagerResponse(wg *engine.Wager) dto.WagerResponse {
	return dto.WagerResponse{
		UserID:             wg.UserID,
		RoundIndex:         wg.RoundIndex,
		Amount:             wg.Amount,
		Side:               string(wg.Side),
		Referrer:           wg.ReferrerSnapshot,
		ClaimedByUser:      wg.ClaimedByUser,
		ClaimedByAffiliate: wg.ClaimedByAffiliate,
	}
}

// claimUser paga a aposta vencedora do próprio usuário
func (s *Server) claimUser(w http.ResponseWriter, r *http.Request) {
	var req dto.ClaimUserRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := requireCaller(r, req.UserID); err != nil {
		s.fail(w, err)
		return
	}

	payout, bonus, err := s.ledger.ClaimUserWinnings(r.Context(), req.UserID, req.RoundIndex)
	if err != nil {
		s.fail(w, err)
		return
	}

	_ = s.publ.PublishWinningsClaimed(r.Context(), events.WinningsClaimed{
		Kind:         "USER",
		Claimant:     req.UserID,
		UserID:       req.UserID,
		RoundIndex:   req.RoundIndex,
		Amount:       payout,
		JackpotBonus: bonus,
	})

	writeJSON(w, http.StatusOK, dto.ClaimResponse{Payout: payout, JackpotBonus: bonus})
}

// claimAffiliate paga ao afiliado a fatia da aposta vencedora indicada
func (s *Server) claimAffiliate(w http.ResponseWriter, r *http.Request) {
	var req dto.ClaimAffiliateRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := requireCaller(r, req.Affiliate); err != nil {
		s.fail(w, err)
		return
	}

	amount, err := s.ledger.ClaimAffiliateWinnings(r.Context(), req.Affiliate, req.UserID, req.RoundIndex)
	if err != nil {
		s.fail(w, err)
		return
	}

	_ = s.publ.PublishWinningsClaimed(r.Context(), events.WinningsClaimed{
		Kind:       "AFFILIATE",
		Claimant:   req.Affiliate,
		UserID:     req.UserID,
		RoundIndex: req.RoundIndex,
		Amount:     amount,
	})

	writeJSON(w, http.StatusOK, dto.ClaimResponse{Payout: amount})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.Config(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PlatformConfigResponse{
		Owner:                   cfg.Owner,
		AssetReference:          cfg.AssetReference,
		RoundCounter:            cfg.RoundCounter,
		RoundDurationSecs:       uint64(cfg.RoundDuration / time.Second),
		WinnersBps:              cfg.Allocation.WinnersBps,
		AffiliatesBps:           cfg.Allocation.AffiliatesBps,
		JackpotBps:              cfg.Allocation.JackpotBps,
		PlatformBps:             cfg.Allocation.PlatformBps,
		Tier5:                   cfg.JackpotTiers.Tier5,
		Tier6:                   cfg.JackpotTiers.Tier6,
		Tier7:                   cfg.JackpotTiers.Tier7,
		Tier8:                   cfg.JackpotTiers.Tier8,
		Tier9:                   cfg.JackpotTiers.Tier9,
		Tier10:                  cfg.JackpotTiers.Tier10,
		MinWager:                cfg.MinWager,
		OracleReference:         cfg.OracleReference,
		StalenessSecs:           uint64(cfg.StalenessTolerance / time.Second),
		JackpotPool:             cfg.JackpotPool,
		UncollectedPlatformFees: cfg.UncollectedPlatformFees,
	})
}

func (s *Server) setDuration(w http.ResponseWriter, r *http.Request) {
	var req dto.SetDurationRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.configResult(w, s.ledger.SetDuration(r.Context(), caller(r), time.Duration(req.Seconds)*time.Second))
}

func (s *Server) setAllocation(w http.ResponseWriter, r *http.Request) {
	var req dto.SetAllocationRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.configResult(w, s.ledger.SetAllocation(r.Context(), caller(r), engine.Allocation{
		WinnersBps:    req.WinnersBps,
		AffiliatesBps: req.AffiliatesBps,
		JackpotBps:    req.JackpotBps,
		PlatformBps:   req.PlatformBps,
	}))
}

func (s *Server) setJackpotTiers(w http.ResponseWriter, r *http.Request) {
	var req dto.SetJackpotTiersRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.configResult(w, s.ledger.SetJackpotTiers(r.Context(), caller(r), engine.JackpotTiers{
		Tier5: req.Tier5, Tier6: req.Tier6, Tier7: req.Tier7,
		Tier8: req.Tier8, Tier9: req.Tier9, Tier10: req.Tier10,
	}))
}

func (s *Server) setMinWager(w http.ResponseWriter, r *http.Request) {
	var req dto.SetMinWagerRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.configResult(w, s.ledger.SetMinWager(r.Context(), caller(r), req.Amount))
}

func (s *Server) setOracleReference(w http.ResponseWriter, r *http.Request) {
	var req dto.SetOracleReferenceRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.configResult(w, s.ledger.SetOracleReference(r.Context(), caller(r), req.Reference))
}

func (s *Server) setStaleness(w http.ResponseWriter, r *http.Request) {
	var req dto.SetStalenessRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.configResult(w, s.ledger.SetStalenessTolerance(r.Context(), caller(r), time.Duration(req.Seconds)*time.Second))
}

// transferOwnership exige dupla autorização: X-Caller (dono atual)
// e X-Co-Signer igual ao novo dono proposto
func (s *Server) transferOwnership(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferOwnershipRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	coSigner := r.Header.Get("X-Co-Signer")
	s.configResult(w, s.ledger.TransferOwnership(r.Context(), caller(r), coSigner, req.NewOwner))
}

// withdrawFees coleta o acumulador de taxas e transfere o token ao dono
func (s *Server) withdrawFees(w http.ResponseWriter, r *http.Request) {
	owner := caller(r)
	amount, err := s.ledger.CollectPlatformFees(r.Context(), owner)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.cust.TransferOut(r.Context(), owner, amount, uuid.NewString()); err != nil {
		s.log.Error("platform fee transfer failed", zap.Uint64("amount", amount), zap.Error(err))
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FeesWithdrawnResponse{Amount: amount})
}

func (s *Server) configResult(w http.ResponseWriter, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
