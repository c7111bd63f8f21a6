package metrics

import "github.com/prometheus/client_golang/prometheus"

// PayoutMetrics tracks payout processing outcomes per method.
type PayoutMetrics struct {
	completed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	amount    *prometheus.CounterVec
}

// NewPayoutMetrics registers payout counters on the provided registerer.
func NewPayoutMetrics(reg prometheus.Registerer) *PayoutMetrics {
	if reg == nil {
		return &PayoutMetrics{}
	}
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payouts_completed_total",
		Help: "Payout requests that reached the completed state.",
	}, []string{"method"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payouts_failed_total",
		Help: "Payout requests that reached the failed state.",
	}, []string{"method"})
	amount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payouts_completed_amount_cents_total",
		Help: "Total cents disbursed through completed payouts.",
	}, []string{"method"})
	reg.MustRegister(completed, failed, amount)
	return &PayoutMetrics{completed: completed, failed: failed, amount: amount}
}

// IncCompleted records a completed payout of the given amount.
func (p *PayoutMetrics) IncCompleted(method string, amountCents int64) {
	if p == nil || p.completed == nil {
		return
	}
	p.completed.WithLabelValues(normalizeLabel(method)).Inc()
	p.amount.WithLabelValues(normalizeLabel(method)).Add(float64(amountCents))
}

// IncFailed records a failed payout.
func (p *PayoutMetrics) IncFailed(method string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(normalizeLabel(method)).Inc()
}
