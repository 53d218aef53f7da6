package assist

import "github.com/prometheus/client_golang/prometheus"

var (
	assistDecisions prometheus.Counter
	assistFallback  prometheus.Counter
	assistSkipped   prometheus.Counter
)

func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	decisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleetsim_assist_decisions_total",
		Help: "Number of decisions sourced from the external reasoner",
	})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleetsim_assist_fallback_total",
		Help: "Number of decisions produced by the deterministic fallback",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleetsim_assist_skipped_total",
		Help: "Number of external calls skipped by the debounce window",
	})
	return decisions, fallback, skipped
}

func init() {
	assistDecisions, assistFallback, assistSkipped = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers assist metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(assistDecisions, assistFallback, assistSkipped)
}

// ResetMetrics reinitializes collectors for testing purposes.
func ResetMetrics(reg prometheus.Registerer) {
	assistDecisions, assistFallback, assistSkipped = newCollectors()
	if reg != nil {
		reg.MustRegister(assistDecisions, assistFallback, assistSkipped)
	}
}
