package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement outcomes and stock mutations.
type CheckoutMetrics struct {
	duration    *prometheus.HistogramVec
	placed      prometheus.Counter
	rejected    *prometheus.CounterVec
	adjustments *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order placement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Successfully placed orders.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejected_total",
		Help: "Order placement attempts rejected before commit.",
	}, []string{"reason"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Stock ledger adjustments by direction.",
	}, []string{"direction"})
	reg.MustRegister(duration, placed, rejected, adjustments)
	return &CheckoutMetrics{
		duration:    duration,
		placed:      placed,
		rejected:    rejected,
		adjustments: adjustments,
	}
}

// ObserveCheckout records the duration of one placement attempt.
func (c *CheckoutMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncPlaced increments the successful order counter.
func (c *CheckoutMetrics) IncPlaced() {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(reason).Inc()
}

// IncAdjustment counts one stock adjustment in the given direction.
func (c *CheckoutMetrics) IncAdjustment(direction string) {
	if c == nil || c.adjustments == nil {
		return
	}
	c.adjustments.WithLabelValues(direction).Inc()
}
