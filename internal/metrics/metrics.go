package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Outbound gateway calls
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_gateway_requests_total",
			Help: "Total PayGate Global API calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // ok|gateway_error|unavailable
	)
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paygate_gateway_request_duration_seconds",
			Help:    "PayGate Global API call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Inbound webhooks
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_webhooks_total",
			Help: "Total webhook deliveries by result",
		},
		[]string{"result"}, // accepted|unauthorized|bad_request|error
	)

	// Reconciliation
	ReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_reconciled_total",
			Help: "Pending transactions checked by the reconciliation job",
		},
		[]string{"outcome"}, // updated|unchanged|failed
	)
)

// Handler serves the /metrics endpoint
var Handler = promhttp.Handler

var initOnce sync.Once

// Init registers the collectors with the default registry
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(GatewayRequestsTotal)
		prometheus.MustRegister(GatewayRequestDuration)
		prometheus.MustRegister(WebhooksTotal)
		prometheus.MustRegister(ReconciledTotal)
	})
}

// ObserveGatewayCall records one outbound gateway call
func ObserveGatewayCall(endpoint, outcome string, elapsed time.Duration) {
	GatewayRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	GatewayRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
