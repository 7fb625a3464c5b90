package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/updown-bet-platform-poc/internal/price-service/cache"
	"github.com/radieske/updown-bet-platform-poc/internal/price-service/dto"
	"github.com/radieske/updown-bet-platform-poc/internal/price-service/repo"
)

// API expõe os endpoints REST de consulta de preços
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache de preços
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/prices", a.listReferences)                 // Lista feeds disponíveis
	r.Get("/v1/prices/{reference}/current", a.getCurrent) // Amostra corrente do feed
	r.Get("/v1/prices/{reference}/history", a.getHistory) // Histórico recente do feed
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listReferences retorna todos os feeds de preço conhecidos
func (a *API) listReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := a.ReadRepo.ListReferences(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

// getCurrent retorna a amostra corrente do feed, preferencialmente do cache
func (a *API) getCurrent(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var fromCache dto.Price
	if ok, _ := a.Cache.GetPrice(r.Context(), reference, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	p, err := a.ReadRepo.GetCurrent(r.Context(), reference)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetPrice(r.Context(), reference, p, 2*time.Second) // TTL curto: o feed publica a cada segundo
	writeJSON(w, http.StatusOK, p)
}

// getHistory retorna as amostras mais recentes do feed
func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	hist, err := a.ReadRepo.History(r.Context(), reference, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
