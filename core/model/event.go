package model

import "time"

// EventType identifies an operational incident on the warehouse floor.
type EventType string

const (
	EventPackageDrop EventType = "PACKAGE_DROP"
	EventSpill       EventType = "SPILL"
	EventHumanEntry  EventType = "HUMAN_ENTRY"
	EventCongestion  EventType = "CONGESTION"
	EventBatteryLow  EventType = "BATTERY_LOW"
)

// Event is an incident produced by the generator or triggered manually.
// Events are dispatch triggers: they stay in the active set only until a
// task has been derived and assigned.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Location    Position  `json:"location"`
	Priority    int       `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Resolved    bool      `json:"resolved"`
}

// EventPriority returns the fixed dispatch priority for an event type.
func EventPriority(t EventType) int {
	switch t {
	case EventPackageDrop:
		return 3
	case EventSpill:
		return 4
	case EventHumanEntry:
		return 5
	case EventCongestion:
		return 2
	case EventBatteryLow:
		return 4
	default:
		return 1
	}
}

// TaskTypeFor maps an event type to the task type that resolves it.
func TaskTypeFor(t EventType) TaskType {
	switch t {
	case EventPackageDrop:
		return TaskPickup
	case EventSpill:
		return TaskClean
	case EventHumanEntry:
		return TaskEscort
	case EventCongestion:
		return TaskStandby
	case EventBatteryLow:
		return TaskRecharge
	default:
		return TaskStandby
	}
}
