// Package metrics defines the sink interfaces the simulation records
// observability data through. Concrete sinks live in infra/metrics.
package metrics

import (
	"time"

	"github.com/warebots/fleetsim/core/model"
)

// TaskRecord is one completed task to be recorded.
type TaskRecord struct {
	Task         model.Task
	RobotID      model.RobotID
	ResponseTime time.Duration
	Time         time.Time
}

// FleetRecord is a periodic snapshot of fleet-level figures.
type FleetRecord struct {
	Tick           uint64
	Efficiency     float64
	TasksCompleted int
	ActiveEvents   int
	Robots         []model.RobotSnapshot
	Time           time.Time
}

// Sink records simulation results for observability purposes.
type Sink interface {
	RecordTaskCompletion(records []TaskRecord) error
	RecordFleetState(record FleetRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordTaskCompletion([]TaskRecord) error { return nil }

func (NopSink) RecordFleetState(FleetRecord) error { return nil }
