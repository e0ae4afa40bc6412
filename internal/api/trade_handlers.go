package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/positions"
)

// BookTradeRequest takes the pair as text ("MYR/HKD", "MYR_HKD" or
// "MYRHKD").
type BookTradeRequest struct {
	Pair              string    `json:"pair"`
	Amount            float64   `json:"amount"`
	Rate              float64   `json:"rate"`
	Account           string    `json:"account"`
	LiquidityProvider string    `json:"liquidity_provider"`
	TradeDate         time.Time `json:"trade_date"`
}

type BookTradeResponse struct {
	Trade   ledger.Trade   `json:"trade"`
	Mirrors []ledger.Trade `json:"usd_mirrors"`
}

type PositionsResponse struct {
	Positions []positions.Position `json:"positions"`
	Summary   positions.Summary    `json:"summary"`
}

// BookTrade decomposes and books a customer trade.
// POST /api/v1/trades
//
// Response:
// - 201 Created
// - 400 Bad Request: invalid trade
// - 422 Unprocessable Entity: no USD rate for an exotic leg
func (h *Handler) BookTrade(w http.ResponseWriter, r *http.Request) {
	var req BookTradeRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := market.ParsePair(req.Pair)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}

	t, mirrors, err := h.desk.BookTrade(ledger.TradeInput{
		Pair:              pair,
		Amount:            req.Amount,
		Rate:              req.Rate,
		Account:           req.Account,
		LiquidityProvider: req.LiquidityProvider,
		Time:              req.TradeDate,
	})
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	if mirrors == nil {
		mirrors = []ledger.Trade{}
	}
	respondWithJSON(w, http.StatusCreated, BookTradeResponse{Trade: t, Mirrors: mirrors})
}

// GetTrades lists customer trades; ?mirrors=true adds USD mirror trades.
// GET /api/v1/trades
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	withMirrors, _ := strconv.ParseBool(r.URL.Query().Get("mirrors"))
	respondWithJSON(w, http.StatusOK, h.desk.Trades(withMirrors))
}

// GET /api/v1/trades/{id}
func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, ok := h.desk.Trade(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "not_found", "Trade not found", id)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// GetPositions
// GET /api/v1/positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	book := h.desk.Positions()
	respondWithJSON(w, http.StatusOK, PositionsResponse{
		Positions: positions.Sorted(book),
		Summary:   positions.Totals(book),
	})
}

// GetCurrencies rolls positions up per currency.
// GET /api/v1/currencies
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	out := h.desk.CurrencyOverview()
	if out == nil {
		out = []positions.CurrencySummary{}
	}
	respondWithJSON(w, http.StatusOK, out)
}
