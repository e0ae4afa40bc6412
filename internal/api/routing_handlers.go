package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
)

// SaveRoutingRequest replaces the routing configuration. A non-zero
// Version makes the save fail with 409 if someone saved in between.
type SaveRoutingRequest struct {
	Version          int                     `json:"version"`
	Currencies       []market.Currency       `json:"currencies"`
	HiddenCurrencies []market.Currency       `json:"hidden_currencies"`
	PairModes        map[string]routing.Mode `json:"pair_configurations"`
}

type TogglePairRequest struct {
	Base  market.Currency `json:"base"`
	Quote market.Currency `json:"quote"`
}

// RoutingChangeResponse is the saved configuration and the audit event
// the save produced.
type RoutingChangeResponse struct {
	Configuration routing.Configuration `json:"configuration"`
	Event         audit.Event           `json:"event"`
}

// GetRouting returns the committed configuration.
// GET /api/v1/routing
func (h *Handler) GetRouting(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.desk.Routing())
}

// SaveRouting
// PUT /api/v1/routing
//
// Response:
// - 200 OK: saved
// - 400 Bad Request: invalid configuration
// - 409 Conflict: version is stale
func (h *Handler) SaveRouting(w http.ResponseWriter, r *http.Request) {
	var req SaveRoutingRequest
	if !decode(w, r, &req) {
		return
	}
	modes, err := routing.NormalizeModes(req.PairModes)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}

	cfg, ev, err := h.desk.SaveRouting(req.Version, req.Currencies, modes, req.HiddenCurrencies, h.user(r))
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, RoutingChangeResponse{Configuration: cfg, Event: ev})
}

// GetMatrix
// GET /api/v1/routing/matrix
func (h *Handler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	cfg := h.desk.Routing()
	respondWithJSON(w, http.StatusOK, map[string]any{
		"version":    cfg.Version,
		"currencies": cfg.ActiveCurrencies,
		"matrix":     cfg.Matrix(),
	})
}

// TogglePair flips one pair between direct and exotic.
// POST /api/v1/routing/toggle
func (h *Handler) TogglePair(w http.ResponseWriter, r *http.Request) {
	var req TogglePairRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := market.NormalizePair(req.Base, req.Quote); err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	if req.Base == req.Quote {
		respondWithError(w, http.StatusBadRequest, "invalid_pair", "A currency cannot be paired with itself", string(req.Base))
		return
	}

	cfg, ev, err := h.desk.ToggleRouting(req.Base, req.Quote, h.user(r))
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, RoutingChangeResponse{Configuration: cfg, Event: ev})
}

// ResetRouting restores the reference currencies, all pairwise direct.
// POST /api/v1/routing/reset
func (h *Handler) ResetRouting(w http.ResponseWriter, r *http.Request) {
	cfg, ev, err := h.desk.ResetRouting(h.user(r))
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, RoutingChangeResponse{Configuration: cfg, Event: ev})
}

// GetPairStatus
// GET /api/v1/routing/status/{base}/{quote}
func (h *Handler) GetPairStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	base, quote := market.Currency(vars["base"]), market.Currency(vars["quote"])
	if _, err := market.NormalizePair(base, quote); err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.desk.PairStatus(base, quote))
}
