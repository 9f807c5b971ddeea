package metrics

import "github.com/prometheus/client_golang/prometheus"

// Booking attempt outcomes.
const (
	OutcomeBooked      = "booked"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// SchedulingMetrics exposes counters/histograms for slot and booking flows.
type SchedulingMetrics struct {
	bookingAttempts  *prometheus.CounterVec
	slotTransitions  *prometheus.CounterVec
	revenueAllocated *prometheus.CounterVec
	bookingDuration  prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		slotTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "slot",
			Name:      "transitions_total",
			Help:      "Total slot status transitions",
		}, []string{"from", "to"}),
		revenueAllocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "revenue",
			Name:      "allocated_total",
			Help:      "Total revenue allocated per party, in currency units",
		}, []string{"party"}),
		bookingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Subsystem: "booking",
			Name:      "duration_seconds",
			Help:      "Latency of booking attempts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingAttempts, m.slotTransitions, m.revenueAllocated, m.bookingDuration)
	return m
}

func (m *SchedulingMetrics) ObserveBookingAttempt(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingAttempts.WithLabelValues(outcome).Inc()
	m.bookingDuration.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.slotTransitions.WithLabelValues(from, to).Inc()
}

// ObserveAllocation adds one allocated share. Amounts are float because
// prometheus counters are; the ledger stays the source of truth.
func (m *SchedulingMetrics) ObserveAllocation(party string, amount float64) {
	if m == nil {
		return
	}
	m.revenueAllocated.WithLabelValues(party).Add(amount)
}
