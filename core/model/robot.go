package model

// RobotID identifies one robot in the fleet.
type RobotID string

// RobotState is the current phase of a robot's state machine.
type RobotState string

const (
	RobotIdle     RobotState = "IDLE"
	RobotMoving   RobotState = "MOVING"
	RobotWorking  RobotState = "WORKING"
	RobotPaused   RobotState = "PAUSED"
	RobotCharging RobotState = "CHARGING"
)

// RobotSnapshot is a point-in-time copy of one robot's externally visible
// state. It is what collaborators and the reasoning policy see; the live
// robot is owned by the simulation engine.
type RobotSnapshot struct {
	ID       RobotID    `json:"id"`
	Position Position   `json:"position"`
	Target   *Position  `json:"targetPosition,omitempty"`
	State    RobotState `json:"state"`
	Battery  float64    `json:"battery"`
	Current  *Task      `json:"currentTask,omitempty"`
	Queue    []Task     `json:"taskQueue"`
	Path     []Position `json:"path"`
	Color    string     `json:"color"`
}
