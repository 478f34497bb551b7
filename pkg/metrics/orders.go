package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records checkout and status-poller activity.
type OrderMetrics struct {
	refreshes     *prometheus.CounterVec
	activePollers prometheus.Gauge
	checkouts     *prometheus.CounterVec
	payments      *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_refreshes_total",
		Help: "Order status refreshes issued by pollers.",
	}, []string{"result"})
	activePollers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "order_pollers_active",
		Help: "Status pollers currently running.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"result"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_confirmations_total",
		Help: "Payment confirmations by recorded status.",
	}, []string{"status"})
	reg.MustRegister(refreshes, activePollers, checkouts, payments)
	return &OrderMetrics{
		refreshes:     refreshes,
		activePollers: activePollers,
		checkouts:     checkouts,
		payments:      payments,
	}
}

// IncRefresh counts one poller refresh with the given result label.
func (o *OrderMetrics) IncRefresh(result string) {
	if o == nil || o.refreshes == nil {
		return
	}
	o.refreshes.WithLabelValues(normalizeLabel(result)).Inc()
}

// PollerStarted increments the active poller gauge.
func (o *OrderMetrics) PollerStarted() {
	if o == nil || o.activePollers == nil {
		return
	}
	o.activePollers.Inc()
}

// PollerStopped decrements the active poller gauge.
func (o *OrderMetrics) PollerStopped() {
	if o == nil || o.activePollers == nil {
		return
	}
	o.activePollers.Dec()
}

// IncCheckout counts one checkout submission with the given result label.
func (o *OrderMetrics) IncCheckout(result string) {
	if o == nil || o.checkouts == nil {
		return
	}
	o.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncPayment counts one payment confirmation by recorded status.
func (o *OrderMetrics) IncPayment(status string) {
	if o == nil || o.payments == nil {
		return
	}
	o.payments.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
