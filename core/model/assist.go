package model

// AssistRobot is the trimmed robot view sent to the reasoning collaborator.
type AssistRobot struct {
	ID          RobotID    `json:"id"`
	Position    Position   `json:"position"`
	State       RobotState `json:"state"`
	Battery     float64    `json:"battery"`
	CurrentTask TaskType   `json:"currentTask,omitempty"`
	QueueLength int        `json:"queueLength"`
}

// AssistEvent is the trimmed event view sent to the reasoning collaborator.
type AssistEvent struct {
	Type     EventType `json:"type"`
	Location Position  `json:"location"`
	Priority int       `json:"priority"`
}

// AssistState is the fleet snapshot attached to a reasoning request.
type AssistState struct {
	Robots        []AssistRobot `json:"robots"`
	ActiveEvents  []AssistEvent `json:"activeEvents"`
	ZoneOccupancy ZoneOccupancy `json:"zoneOccupancy"`
	HumanWorker   *Position     `json:"humanWorkerPosition,omitempty"`
}

// Assignment is one robot/task pairing returned by the reasoning
// collaborator or by the deterministic fallback.
type Assignment struct {
	RobotID  RobotID  `json:"robotId"`
	TaskType TaskType `json:"taskType"`
	Priority int      `json:"priority"`
	Target   Position `json:"targetLocation"`
	Reason   string   `json:"reason"`
}

// AssistResponse is the full decision returned by the reasoning policy.
// Fallback marks decisions produced by the deterministic heuristic rather
// than the external collaborator.
type AssistResponse struct {
	Reasoning   string       `json:"reasoning"`
	Assignments []Assignment `json:"assignments"`
	Alerts      []string     `json:"alerts"`
	LatencyMs   int64        `json:"latency,omitempty"`
	Fallback    bool         `json:"fallback"`
}
