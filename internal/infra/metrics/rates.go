package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		rateFetchesTotal,
		rateFetchLatencyMs,
	)
}

var (
	rateFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_rate_fetches_total",
			Help: "Exchange rate lookups by outcome (live, cached, fallback).",
		},
		[]string{"outcome"},
	)

	rateFetchLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exchange_rate_fetch_latency_ms",
			Help:    "Latency of external exchange rate fetches in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)
)

func IncRateFetch(outcome string) {
	rateFetchesTotal.WithLabelValues(outcome).Inc()
}

func ObserveRateFetchLatency(ms float64) {
	rateFetchLatencyMs.Observe(ms)
}
