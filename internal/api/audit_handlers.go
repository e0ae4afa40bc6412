package api

import (
	"net/http"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/journal"
	"github.com/rustyeddy/treasury/market"
)

type UpdateRatesRequest struct {
	Quotes []market.Quote `json:"quotes"`
	Source string         `json:"source"`
}

type UpdateRatesResponse struct {
	Quotes []market.Quote `json:"quotes"`
	Event  audit.Event    `json:"event"`
}

// GET /api/v1/rates
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.desk.Rates())
}

// UpdateRates stores a batch of quotes.
// PUT /api/v1/rates
func (h *Handler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	var req UpdateRatesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}
	quotes, ev, err := h.desk.UpdateRates(req.Quotes, req.Source, h.user(r))
	if err != nil {
		h.respondWithDeskError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, UpdateRatesResponse{Quotes: quotes, Event: ev})
}

// GetAudit returns the trail newest first.
// GET /api/v1/audit?type=&status=&user=&format=org
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events := h.desk.AuditEvents(audit.Filter{
		Type:   audit.EventType(q.Get("type")),
		Status: q.Get("status"),
		User:   q.Get("user"),
	})

	if q.Get("format") == "org" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(journal.FormatEventsOrg(events)))
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}
