// Package notify defines the simulation events emitted on the event bus.
package notify

import (
	"time"

	"github.com/warebots/fleetsim/core/model"
)

// RobotUpdated is published for robot state changes, rate-limited to every
// few ticks for position updates.
type RobotUpdated struct {
	Robot model.RobotSnapshot
}

// EventRaised is published when a new incident enters the active set.
type EventRaised struct {
	Event model.Event
}

// TaskAssigned is published when a task lands on a robot's queue.
type TaskAssigned struct {
	TaskID   string
	RobotID  model.RobotID
	TaskType model.TaskType
	Location model.Position
}

// TaskCompleted is published when a robot finishes a task.
type TaskCompleted struct {
	TaskID   string
	RobotID  model.RobotID
	Duration time.Duration
}

// SafetyAlert is published for human-safety pauses and battery alerts.
type SafetyAlert struct {
	Message  string
	Zone     model.Zone
	Severity string // "low", "medium" or "high"
}

// MetricsUpdated carries a fresh fleet metrics derivation.
type MetricsUpdated struct {
	Metrics model.FleetMetrics
}

// AssistDecision is published when the reasoning policy produced a
// decision, external or fallback.
type AssistDecision struct {
	Response model.AssistResponse
}

// AssistSkipped is published when an event type never consults the
// external reasoner.
type AssistSkipped struct {
	EventType model.EventType
}

// EventsCleared is published after the active event set is wiped.
type EventsCleared struct{}

// WorkflowExecuted carries the textual results of a rule-graph run.
type WorkflowExecuted struct {
	EventID string
	Results []string
}
