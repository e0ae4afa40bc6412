// Package metrics holds the desk's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TradesBooked counts customer trades by routing mode.
var TradesBooked = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "ledger",
		Name:      "trades_booked_total",
		Help:      "Customer trades booked, by routing mode",
	},
	[]string{"mode"},
)

// TradesRejected counts trades refused at booking.
var TradesRejected = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "ledger",
		Name:      "trades_rejected_total",
		Help:      "Trades refused by validation or decomposition",
	},
)

var RoutingVersion = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "treasury",
		Subsystem: "routing",
		Name:      "config_version",
		Help:      "Version of the committed routing configuration",
	},
)

var RoutingConflicts = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "routing",
		Name:      "stale_commits_total",
		Help:      "Routing saves refused because the configuration moved on",
	},
)

var AuditEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Audit events recorded, by type",
	},
	[]string{"event_type"},
)

var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "treasury",
		Subsystem: "positions",
		Name:      "open",
		Help:      "Positions with a non-zero net amount at the last aggregation",
	},
)

var JournalErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "treasury",
		Subsystem: "journal",
		Name:      "write_errors_total",
		Help:      "Journal writes that failed",
	},
)

// RequestDuration is HTTP latency in seconds by route template.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "treasury",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
