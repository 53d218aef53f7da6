package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tasksAssigned       *prometheus.CounterVec
	tasksCompleted      *prometheus.CounterVec
	assignmentExhausted prometheus.Counter
	taskResponseTime    prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Histogram) {
	assigned := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsim_tasks_assigned_total",
			Help: "Number of tasks assigned to robots",
		},
		[]string{"task_type"},
	)
	completed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsim_tasks_completed_total",
			Help: "Number of tasks completed by robots",
		},
		[]string{"task_type"},
	)
	exhausted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetsim_assignment_exhausted_total",
			Help: "Number of assignment attempts that found no eligible robot",
		},
	)
	response := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetsim_task_response_time_seconds",
			Help:    "Time from task creation to completion",
			Buckets: prometheus.DefBuckets,
		},
	)
	return assigned, completed, exhausted, response
}

func init() {
	tasksAssigned, tasksCompleted, assignmentExhausted, taskResponseTime = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tasksAssigned, tasksCompleted, assignmentExhausted, taskResponseTime)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tasksAssigned, tasksCompleted, assignmentExhausted, taskResponseTime = newCollectors()
	if reg != nil {
		reg.MustRegister(tasksAssigned, tasksCompleted, assignmentExhausted, taskResponseTime)
	}
}
