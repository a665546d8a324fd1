package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the order lifecycle. Labels keep cardinality low: outcome
// values are a small fixed vocabulary per counter.
var (
	CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kedairuang",
		Subsystem: "order",
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome (created, capacity_rejected, error).",
	}, []string{"outcome"})

	WebhookTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kedairuang",
		Subsystem: "payment",
		Name:      "webhook_total",
		Help:      "Payment callbacks by verdict (applied, ignored, invalid_signature, error).",
	}, []string{"verdict"})

	SweepRestoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kedairuang",
		Subsystem: "sweeper",
		Name:      "restored_items_total",
		Help:      "Line-item reservations restored by the sweeper.",
	})

	SweepExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kedairuang",
		Subsystem: "sweeper",
		Name:      "expired_orders_total",
		Help:      "Unpaid orders cancelled by the sweeper.",
	})

	ReleaseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kedairuang",
		Subsystem: "capacity",
		Name:      "release_total",
		Help:      "Capacity releases by result (released, noop).",
	}, []string{"result"})
)
