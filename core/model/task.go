package model

import "time"

// TaskType identifies the kind of work a robot performs at a location.
type TaskType string

const (
	TaskPickup   TaskType = "PICKUP"
	TaskClean    TaskType = "CLEAN"
	TaskEscort   TaskType = "ESCORT"
	TaskRecharge TaskType = "RECHARGE"
	TaskStandby  TaskType = "STANDBY"
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFailed     TaskStatus = "FAILED"
)

// Task is a unit of work dispatched to a single robot.
type Task struct {
	ID            string        `json:"id"`
	Type          TaskType      `json:"type"`
	Priority      int           `json:"priority"`
	Location      Position      `json:"location"`
	AssignedRobot RobotID       `json:"assignedRobot,omitempty"`
	Status        TaskStatus    `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	Description   string        `json:"description"`
	Dwell         time.Duration `json:"dwell,omitempty"`
	DwellLeft     time.Duration `json:"dwellLeft,omitempty"`
}
