package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/warebots/fleetsim/core/metrics"
)

// PromSink records simulation results in Prometheus metrics.
type PromSink struct {
	completions *prometheus.CounterVec
	response    *prometheus.HistogramVec
	efficiency  prometheus.Gauge
	active      prometheus.Gauge
	battery     *prometheus.GaugeVec
}

// NewPromSink registers sink metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. Already registered
// collectors are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetsim_sink_task_completions_total",
			Help: "Total number of recorded task completions",
		}, []string{"robot_id", "task_type"}),
		response: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetsim_sink_response_time_seconds",
			Help:    "Time between task creation and completion",
			Buckets: prometheus.DefBuckets,
		}, []string{"task_type"}),
		efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetsim_fleet_efficiency",
			Help: "Percentage of robots currently moving or working",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetsim_active_events",
			Help: "Number of unresolved events",
		}),
		battery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleetsim_robot_battery",
			Help: "Per-robot battery level",
		}, []string{"robot_id"}),
	}
	for _, c := range []prometheus.Collector{s.completions, s.response, s.efficiency, s.active, s.battery} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// RecordTaskCompletion increments completion counters per record.
func (s *PromSink) RecordTaskCompletion(records []coremetrics.TaskRecord) error {
	for _, r := range records {
		s.completions.WithLabelValues(string(r.RobotID), string(r.Task.Type)).Inc()
		s.response.WithLabelValues(string(r.Task.Type)).Observe(r.ResponseTime.Seconds())
	}
	return nil
}

// RecordFleetState updates fleet-level gauges.
func (s *PromSink) RecordFleetState(rec coremetrics.FleetRecord) error {
	s.efficiency.Set(rec.Efficiency)
	s.active.Set(float64(rec.ActiveEvents))
	for _, r := range rec.Robots {
		s.battery.WithLabelValues(string(r.ID)).Set(r.Battery)
	}
	return nil
}
