// Package api exposes the desk over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/treasury/desk"
	"github.com/rustyeddy/treasury/internal/logging"
	"github.com/rustyeddy/treasury/internal/metrics"
)

type Dependencies struct {
	Desk   *desk.Desk
	Logger logrus.FieldLogger
	// Actor is recorded as the user when a request carries no UserHeader.
	Actor string
}

// UserHeader names the user a request acts for.
const UserHeader = "X-Treasury-User"

// SetupRoutes registers every endpoint under /api/v1 plus /health and
// /metrics. Middleware order: recovery, then logging.
//
//	/api/v1/
//	  routing          GET, PUT
//	  routing/matrix   GET
//	  routing/toggle   POST
//	  routing/reset    POST
//	  routing/status/{base}/{quote}  GET
//	  trades           GET, POST
//	  trades/{id}      GET
//	  positions        GET
//	  currencies       GET
//	  rates            GET, PUT
//	  hedges           GET, POST
//	  hedges/{id}/approve  POST
//	  resets           GET, POST
//	  resets/{id}/approve  POST
//	  resets/{id}/reject   POST
//	  audit            GET ?type&status&user&format=org
func SetupRoutes(deps *Dependencies) *mux.Router {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	actor := deps.Actor
	if actor == "" {
		actor = "system"
	}
	h := &Handler{desk: deps.Desk, log: log, actor: actor}

	router := mux.NewRouter()
	router.Use(Recovery(log))
	router.Use(Logging(log))

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/routing", h.GetRouting).Methods(http.MethodGet)
	api.HandleFunc("/routing", h.SaveRouting).Methods(http.MethodPut)
	api.HandleFunc("/routing/matrix", h.GetMatrix).Methods(http.MethodGet)
	api.HandleFunc("/routing/toggle", h.TogglePair).Methods(http.MethodPost)
	api.HandleFunc("/routing/reset", h.ResetRouting).Methods(http.MethodPost)
	api.HandleFunc("/routing/status/{base}/{quote}", h.GetPairStatus).Methods(http.MethodGet)

	api.HandleFunc("/trades", h.GetTrades).Methods(http.MethodGet)
	api.HandleFunc("/trades", h.BookTrade).Methods(http.MethodPost)
	api.HandleFunc("/trades/{id}", h.GetTrade).Methods(http.MethodGet)
	api.HandleFunc("/positions", h.GetPositions).Methods(http.MethodGet)
	api.HandleFunc("/currencies", h.GetCurrencies).Methods(http.MethodGet)

	api.HandleFunc("/rates", h.GetRates).Methods(http.MethodGet)
	api.HandleFunc("/rates", h.UpdateRates).Methods(http.MethodPut)

	api.HandleFunc("/hedges", h.GetHedges).Methods(http.MethodGet)
	api.HandleFunc("/hedges", h.EnterHedge).Methods(http.MethodPost)
	api.HandleFunc("/hedges/{id}/approve", h.ApproveHedge).Methods(http.MethodPost)

	api.HandleFunc("/resets", h.GetResets).Methods(http.MethodGet)
	api.HandleFunc("/resets", h.RequestReset).Methods(http.MethodPost)
	api.HandleFunc("/resets/{id}/approve", h.ApproveReset).Methods(http.MethodPost)
	api.HandleFunc("/resets/{id}/reject", h.RejectReset).Methods(http.MethodPost)

	api.HandleFunc("/audit", h.GetAudit).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return router
}

// Handler carries what every endpoint needs.
type Handler struct {
	desk  *desk.Desk
	log   logrus.FieldLogger
	actor string
}

// user is the acting user: the UserHeader when present, otherwise the
// configured actor.
func (h *Handler) user(r *http.Request, fallback ...string) string {
	if u := r.Header.Get(UserHeader); u != "" {
		return u
	}
	for _, f := range fallback {
		if f != "" {
			return f
		}
	}
	return h.actor
}
