package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgspace_web_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgspace_web_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Record API calls
	GatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgspace_web_gateway_calls_total",
			Help: "Total number of record API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgspace_web_gateway_call_duration_seconds",
			Help:    "Duration of record API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// List cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgspace_web_cache_lookups_total",
			Help: "List cache lookups by resource and result (hit, miss, stale)",
		},
		[]string{"resource", "result"},
	)

	// Change events
	ChangeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgspace_web_change_events_total",
			Help: "Record change events by resource and direction (published, received)",
		},
		[]string{"resource", "direction"},
	)

	// Sessions
	Sessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgspace_web_session_events_total",
			Help: "Session lifecycle events (issued, revoked, expired, rejected)",
		},
		[]string{"event"},
	)

	ReportsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgspace_web_reports_issued_total",
			Help: "Signed reports issued by format",
		},
		[]string{"format"},
	)
)

// ObserveGateway records one record API call. Its signature matches
// gateway.Observer.
func ObserveGateway(op string, status int, elapsed time.Duration, err error) {
	GatewayDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	GatewayCalls.WithLabelValues(op, gatewayOutcome(status, err)).Inc()
}

func gatewayOutcome(status int, err error) string {
	switch {
	case status == 0 && err != nil:
		return "transport_error"
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	case err != nil:
		return "read_error"
	}
	return "ok"
}

// ObserveHTTP records one served request.
func ObserveHTTP(method string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
