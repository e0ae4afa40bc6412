package api

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/rustyeddy/treasury/desk"
	"github.com/rustyeddy/treasury/hedge"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/reset"
	"github.com/rustyeddy/treasury/routing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(w http.ResponseWriter, status int, code, message, details string) {
	respondWithJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

type errorClass struct {
	target error
	status int
	code   string
}

// errorClasses is checked in order; the first match decides the answer.
var errorClasses = []errorClass{
	{routing.ErrStale, http.StatusConflict, "stale_configuration"},
	{hedge.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{reset.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{hedge.ErrNotFound, http.StatusNotFound, "not_found"},
	{reset.ErrNotFound, http.StatusNotFound, "not_found"},
	{desk.ErrUnknownPosition, http.StatusNotFound, "unknown_position"},
	{hedge.ErrSelfApproval, http.StatusForbidden, "segregation_of_duties"},
	{reset.ErrSegregation, http.StatusForbidden, "segregation_of_duties"},
	{market.ErrUnknownRate, http.StatusUnprocessableEntity, "missing_rate"},
	{routing.ErrValidation, http.StatusBadRequest, "invalid_configuration"},
	{ledger.ErrInvalidTrade, http.StatusBadRequest, "invalid_trade"},
	{hedge.ErrInvalidHedge, http.StatusBadRequest, "invalid_hedge"},
	{reset.ErrInvalidRequest, http.StatusBadRequest, "invalid_reset"},
	{market.ErrInvalidQuote, http.StatusBadRequest, "invalid_quote"},
	{market.ErrInvalidCurrencyCode, http.StatusBadRequest, "invalid_currency"},
}

// respondWithDeskError maps a desk error to its HTTP status.
func (h *Handler) respondWithDeskError(w http.ResponseWriter, r *http.Request, err error) {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			respondWithError(w, c.status, c.code, c.target.Error(), err.Error())
			return
		}
	}
	h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error", err.Error())
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil {
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return false
	}
	return true
}
