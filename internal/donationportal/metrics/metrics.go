package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	SourceVerification = "verification"
	SourceMonitor      = "monitor"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "donations_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// OrdersCreated counts gateway orders by outcome: created, gateway_error, store_error.
	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_orders_created_total",
			Help: "Number of order creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	DonationsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_settled_total",
			Help: "Number of donations moved to completed",
		},
		[]string{"source"},
	)

	DonationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donations_failed_total",
			Help: "Number of pending donations expired without a captured payment",
		},
	)

	InvalidSignatures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donations_invalid_signatures_total",
			Help: "Number of verification attempts rejected on signature",
		},
	)

	MonitorTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "donations_monitor_tick_duration_seconds",
			Help:    "Duration of pending-order scheduling ticks",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Register(registerer prometheus.Registerer) {
	registerer.MustRegister(
		RequestCount,
		RequestDuration,
		OrdersCreated,
		DonationsSettled,
		DonationsFailed,
		InvalidSignatures,
		MonitorTickDuration,
	)
}
