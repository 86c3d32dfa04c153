package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		transactionsTotal,
		revenueTotal,
		terminalRejectionsTotal,
	)
}

var (
	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Ledger transactions by status and payment method.",
		},
		[]string{"status", "method"},
	)

	revenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_revenue_total",
			Help: "Total monetary value of completed transactions, labeled by currency.",
		},
		[]string{"currency"},
	)

	terminalRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_terminal_rejections_total",
			Help: "Status updates rejected because the transaction was already terminal.",
		},
	)
)

func IncTransaction(status, method string) {
	transactionsTotal.WithLabelValues(status, method).Inc()
}

func AddRevenue(currency string, amount float64) {
	revenueTotal.WithLabelValues(currency).Add(amount)
}

func IncTerminalRejection() {
	terminalRejectionsTotal.Inc()
}
