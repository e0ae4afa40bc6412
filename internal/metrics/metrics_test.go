package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorsExported(t *testing.T) {
	TradesBooked.WithLabelValues("exotic").Inc()
	RoutingVersion.Set(7)
	AuditEvents.WithLabelValues("Rate Update").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `treasury_ledger_trades_booked_total{mode="exotic"}`)
	assert.Contains(t, body, "treasury_routing_config_version 7")
	assert.Contains(t, body, `treasury_audit_events_total{event_type="Rate Update"}`)
}
