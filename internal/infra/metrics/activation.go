package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		manualActivationsTotal,
		lastlinkSyncsTotal,
		usersByMode,
	)
}

var (
	manualActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manual_activations_total",
			Help: "Admin activation mode changes by direction (grant, revert).",
		},
		[]string{"direction"},
	)

	lastlinkSyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lastlink_syncs_total",
			Help: "Lastlink sync passes by outcome.",
		},
		[]string{"outcome"},
	)

	usersByMode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_by_activation_mode",
			Help: "Current number of users per activation mode.",
		},
		[]string{"mode"},
	)
)

func IncManualActivation(direction string) {
	manualActivationsTotal.WithLabelValues(direction).Inc()
}

func IncLastlinkSync(outcome string) {
	lastlinkSyncsTotal.WithLabelValues(outcome).Inc()
}

func SetUsersByMode(mode string, count int) {
	usersByMode.WithLabelValues(mode).Set(float64(count))
}
