package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/hedge"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/reset"
)

type EnterHedgeRequest struct {
	Pair              string  `json:"pair"`
	Type              string  `json:"type"`
	Amount            float64 `json:"amount"`
	Rate              float64 `json:"rate"`
	LiquidityProvider string  `json:"liquidity_provider"`
	ExternalReference string  `json:"external_reference"`
	EnteredBy         string  `json:"entered_by"`
}

// ApprovalRequest is the body of every approve and reject call.
type ApprovalRequest struct {
	Approver string `json:"approver"`
	Comments string `json:"comments"`
}

type HedgeResponse struct {
	Hedge hedge.Hedge `json:"hedge"`
	Event audit.Event `json:"event"`
}

type ResetResponse struct {
	Reset reset.Request `json:"reset"`
	Event audit.Event   `json:"event"`
}

// EnterHedge
// POST /api/v1/hedges
//
// Response:
// - 201 Created: status Pending when the amount needs dual authorization
// - 400 Bad Request
func (h *Handler) EnterHedge(w http.ResponseWriter, r *http.Request) {
	var req EnterHedgeRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := market.ParsePair(req.Pair)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	typ, err := hedge.ParseType(req.Type)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}

	hg, ev, err := h.desk.EnterHedge(hedge.Input{
		Pair:              pair,
		Type:              typ,
		Amount:            req.Amount,
		Rate:              req.Rate,
		LiquidityProvider: req.LiquidityProvider,
		ExternalReference: req.ExternalReference,
		EnteredBy:         h.user(r, req.EnteredBy),
	})
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, HedgeResponse{Hedge: hg, Event: ev})
}

// GET /api/v1/hedges
func (h *Handler) GetHedges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.desk.Hedges())
}

// ApproveHedge gives the second authorization.
// POST /api/v1/hedges/{id}/approve
func (h *Handler) ApproveHedge(w http.ResponseWriter, r *http.Request) {
	var req ApprovalRequest
	if !decode(w, r, &req) {
		return
	}
	hg, ev, err := h.desk.ApproveHedge(mux.Vars(r)["id"], h.user(r, req.Approver))
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, HedgeResponse{Hedge: hg, Event: ev})
}

// RequestReset opens a position reset. current_position is ignored; the
// desk reads it from the book.
// POST /api/v1/resets
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var in reset.Input
	if !decode(w, r, &in) {
		return
	}
	in.RequestedBy = h.user(r, in.RequestedBy)

	req, ev, err := h.desk.RequestReset(in)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, ResetResponse{Reset: req, Event: ev})
}

// GetResets lists resets, optionally narrowed by ?status= (repeatable).
// GET /api/v1/resets
func (h *Handler) GetResets(w http.ResponseWriter, r *http.Request) {
	var statuses []reset.Status
	for _, s := range r.URL.Query()["status"] {
		statuses = append(statuses, reset.Status(s))
	}
	out := h.desk.Resets(statuses...)
	if out == nil {
		out = []reset.Request{}
	}
	respondWithJSON(w, http.StatusOK, out)
}

// POST /api/v1/resets/{id}/approve
func (h *Handler) ApproveReset(w http.ResponseWriter, r *http.Request) {
	var req ApprovalRequest
	if !decode(w, r, &req) {
		return
	}
	rs, ev, err := h.desk.ApproveReset(mux.Vars(r)["id"], h.user(r, req.Approver), req.Comments)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ResetResponse{Reset: rs, Event: ev})
}

// POST /api/v1/resets/{id}/reject
func (h *Handler) RejectReset(w http.ResponseWriter, r *http.Request) {
	var req ApprovalRequest
	if !decode(w, r, &req) {
		return
	}
	rs, ev, err := h.desk.RejectReset(mux.Vars(r)["id"], h.user(r, req.Approver), req.Comments)
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ResetResponse{Reset: rs, Event: ev})
}
