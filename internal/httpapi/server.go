package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/cashout"
	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/odds"
	"github.com/radieske/live-cashout-engine/internal/engine/settle"
)

// API expõe a superfície REST do engine: odds ao vivo, cotação de
// cash-out e execução de cash-out.
type API struct {
	Log      *zap.Logger
	Quoter   *odds.Quoter
	Bets     settle.BetLoader
	Valuator *cashout.Valuator
	Executor *settle.Executor
}

// Router retorna o roteador HTTP com os endpoints do engine.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/matches/{id}/odds", a.getOdds)           // cotações ao vivo (cache -> modelo)
	r.Get("/v1/bets/{id}/cashout/quote", a.quoteCashout) // valuation sem efeito colateral
	r.Post("/v1/bets/{id}/cashout", a.executeCashout)    // settlement atômico
	return r
}

// getOdds retorna as cotações de uma partida, preferencialmente do cache.
func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	var filter *market.Market
	if raw := r.URL.Query().Get("market"); raw != "" {
		m, err := market.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		filter = &m
	}

	quotes, err := a.Quoter.QuoteMatch(r.Context(), matchID, filter)
	if err != nil {
		a.writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// quoteCashout computa a cotação corrente de cash-out de uma aposta.
// Requisição sem efeitos colaterais; pode ser abandonada livremente.
func (a *API) quoteCashout(w http.ResponseWriter, r *http.Request) {
	betID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "userId required")
		return
	}

	strat, ok := parseStrategy(r.URL.Query().Get("strategy"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "unknown strategy")
		return
	}

	bet, err := a.Bets.Load(r.Context(), betID)
	if err != nil {
		a.writeFault(w, err)
		return
	}
	if bet.UserID != userID {
		a.writeFault(w, fault.Unauthorized())
		return
	}

	quote, err := a.Valuator.Quote(r.Context(), bet, strat)
	if err != nil {
		a.writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// executeCashout dispara o settlement. Uma vez iniciada a unidade atômica,
// a requisição corre até aceite/rejeite definitivo.
func (a *API) executeCashout(w http.ResponseWriter, r *http.Request) {
	betID := chi.URLParam(r, "id")

	var req ExecuteCashoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "bad json")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "userId required")
		return
	}

	strat, ok := parseStrategy(req.Strategy)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "unknown strategy")
		return
	}

	res, err := a.Executor.Execute(r.Context(), betID, req.UserID, req.ConfirmValue, strat)
	if err != nil {
		a.writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseStrategy(raw string) (cashout.Strategy, bool) {
	switch raw {
	case "", string(cashout.StrategyAggregate):
		return cashout.StrategyAggregate, true
	case string(cashout.StrategyShift):
		return cashout.StrategyShift, true
	}
	return "", false
}

// writeFault traduz a taxonomia de erros do engine para HTTP.
func (a *API) writeFault(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		a.Log.Error("internal error", zap.Error(err))
		writeError(w, status, code, "internal error")
		return
	}
	body := ErrorResponse{Error: code, Message: err.Error()}
	if r := fault.ReasonOf(err); r != "" {
		body.Reason = string(r)
	}
	writeJSON(w, status, body)
}

// StatusFor mapeia um erro do engine para status HTTP + código estável.
func StatusFor(err error) (int, string) {
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		return http.StatusNotFound, "not_found"
	case fault.KindUnauthorized:
		return http.StatusForbidden, "unauthorized"
	case fault.KindIneligible:
		return http.StatusUnprocessableEntity, "ineligible"
	case fault.KindStaleQuote:
		return http.StatusConflict, "stale_quote"
	case fault.KindConflict:
		return http.StatusConflict, "already_settled"
	case fault.KindMissingBaseData:
		return http.StatusNotFound, "missing_base_odds"
	}
	if err == cashout.ErrShiftRequiresSingleLeg {
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
