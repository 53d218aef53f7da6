package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ticksTotal      prometheus.Counter
	eventsGenerated *prometheus.CounterVec
	forcedRecharges prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, *prometheus.CounterVec, prometheus.Counter) {
	ticks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetsim_ticks_total",
			Help: "Number of simulation ticks executed",
		},
	)
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsim_events_total",
			Help: "Number of warehouse events raised",
		},
		[]string{"event_type"},
	)
	recharges := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetsim_forced_recharges_total",
			Help: "Number of automatic low-battery recharge preemptions",
		},
	)
	return ticks, events, recharges
}

func init() {
	ticksTotal, eventsGenerated, forcedRecharges = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers simulation metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(ticksTotal, eventsGenerated, forcedRecharges)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	ticksTotal, eventsGenerated, forcedRecharges = newCollectors()
	if reg != nil {
		reg.MustRegister(ticksTotal, eventsGenerated, forcedRecharges)
	}
}
