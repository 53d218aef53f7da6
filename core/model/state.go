package model

import "time"

// FleetMetrics aggregates fleet performance figures. They are derived on
// demand from raw counters, not stored incrementally.
type FleetMetrics struct {
	TasksCompleted   int                 `json:"tasksCompleted"`
	TotalTasks       int                 `json:"totalTasks"`
	AvgResponseMs    float64             `json:"avgResponseTime"`
	Efficiency       float64             `json:"efficiency"`
	TaskHistory      []TaskHistoryEntry  `json:"taskHistory"`
	Utilization      map[RobotID]float64 `json:"robotUtilization"`
	TypeDistribution map[TaskType]int    `json:"taskTypeDistribution"`
}

// TaskHistoryEntry is one sample of the completed-task series.
type TaskHistoryEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	TasksCompleted int       `json:"tasksCompleted"`
}

// WarehouseState is the full-state snapshot exposed to collaborators.
// It is JSON round-trippable and can be re-applied as a tick-boundary
// state replacement.
type WarehouseState struct {
	Robots        []RobotSnapshot `json:"robots"`
	Events        []Event         `json:"events"`
	ActiveEvents  []Event         `json:"activeEvents"`
	HumanWorker   *HumanWorker    `json:"humanWorker,omitempty"`
	ZoneOccupancy ZoneOccupancy   `json:"zoneOccupancy"`
	Grid          [][]TileType    `json:"grid"`
	Obstacles     []Position      `json:"obstacles"`
	Metrics       FleetMetrics    `json:"metrics"`
	Speed         float64         `json:"simulationSpeed"`
	Tick          uint64          `json:"tick"`
}

// LogEntry is one line of the bounded operational event log.
type LogEntry struct {
	ID        string    `json:"id"`
	Category  string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Color     string    `json:"color"`
}
