package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "homeshop"

// Checkout outcomes.
const (
	OutcomePlaced   = "placed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// CheckoutMetrics counts checkout attempts and their latency.
type CheckoutMetrics struct {
	total    *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Time spent placing an order.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(total, duration)
	return &CheckoutMetrics{total: total, duration: duration}
}

// Observe records a finished checkout attempt.
func (m *CheckoutMetrics) Observe(outcome string, elapsed time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	m.total.WithLabelValues(labelOrUnknown(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
}
