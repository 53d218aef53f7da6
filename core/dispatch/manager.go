// Package dispatch converts warehouse events into tasks, assigns them to
// robots and derives fleet metrics from completions.
package dispatch

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/warebots/fleetsim/core/grid"
	"github.com/warebots/fleetsim/core/logger"
	"github.com/warebots/fleetsim/core/model"
)

// Robot is the narrow capability surface the manager needs. Robots are
// borrowed for the duration of one tick's processing and must not be
// retained across ticks.
type Robot interface {
	ID() model.RobotID
	Position() model.Position
	State() model.RobotState
	Battery() float64
	QueueLen() int
	IsAvailable() bool
	AssignTask(*model.Task) bool
}

// Manager owns task creation, assignment and completion bookkeeping.
// The base* fields seed the aggregates after a snapshot restore, where the
// individual completed tasks are no longer available.
type Manager struct {
	completed     []*model.Task
	responseTimes []float64 // milliseconds
	baseCompleted int
	baseAvgMs     float64
	baseDist      map[model.TaskType]int
	log           logger.Logger
}

// NewManager creates a task manager.
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop{}
	}
	return &Manager{log: log}
}

// CreateTaskFromEvent derives the task resolving an event. RECHARGE tasks
// always target the charging zone regardless of where the event fired.
func (m *Manager) CreateTaskFromEvent(ev model.Event) *model.Task {
	taskType := model.TaskTypeFor(ev.Type)
	location := ev.Location
	if taskType == model.TaskRecharge {
		location = grid.ChargeZone
	}
	return &model.Task{
		ID:          uuid.NewString(),
		Type:        taskType,
		Priority:    ev.Priority,
		Location:    location,
		Status:      model.TaskPending,
		CreatedAt:   time.Now(),
		Description: ev.Description,
	}
}

// AssignNearest assigns the task using a three-tier fallback: fully
// available robots nearest by Manhattan distance, then idle robots with
// queue headroom regardless of battery, then the robot with the globally
// shortest queue. Returns nil when every tier is exhausted; the task stays
// unassigned rather than erroring.
func (m *Manager) AssignNearest(task *model.Task, robots []Robot) Robot {
	var available []Robot
	for _, r := range robots {
		if r.IsAvailable() {
			available = append(available, r)
		}
	}
	if len(available) > 0 {
		return m.assignToClosest(task, available)
	}

	var idle []Robot
	for _, r := range robots {
		if r.State() == model.RobotIdle && r.QueueLen() < queueHeadroom {
			idle = append(idle, r)
		}
	}
	if len(idle) > 0 {
		return m.assignToClosest(task, idle)
	}

	var leastBusy Robot
	for _, r := range robots {
		if r.QueueLen() >= queueHeadroom {
			continue
		}
		if leastBusy == nil || r.QueueLen() < leastBusy.QueueLen() {
			leastBusy = r
		}
	}
	if leastBusy == nil || !leastBusy.AssignTask(task) {
		assignmentExhausted.Inc()
		m.log.Warnf("no robot available for %s task at (%d, %d)", task.Type, task.Location.X, task.Location.Y)
		return nil
	}
	tasksAssigned.WithLabelValues(string(task.Type)).Inc()
	return leastBusy
}

// queueHeadroom mirrors the robot queue cap for tier checks.
const queueHeadroom = 3

// assignToClosest picks the candidate nearest to the task location.
// Distance ties are broken by iteration order, first found wins.
func (m *Manager) assignToClosest(task *model.Task, candidates []Robot) Robot {
	closest := candidates[0]
	minDist := closest.Position().Manhattan(task.Location)
	for _, r := range candidates[1:] {
		if d := r.Position().Manhattan(task.Location); d < minDist {
			minDist = d
			closest = r
		}
	}
	if !closest.AssignTask(task) {
		assignmentExhausted.Inc()
		return nil
	}
	tasksAssigned.WithLabelValues(string(task.Type)).Inc()
	return closest
}

// ApplyExternal applies reasoning-sourced assignments to the fleet. Each
// entry is validated against fleet membership and grid bounds before it is
// turned into a task; invalid entries are skipped with a warning. Returns
// the number of tasks applied.
func (m *Manager) ApplyExternal(assignments []model.Assignment, robots []Robot, inBounds func(model.Position) bool) int {
	byID := make(map[model.RobotID]Robot, len(robots))
	for _, r := range robots {
		byID[r.ID()] = r
	}
	applied := 0
	for _, a := range assignments {
		robot, ok := byID[a.RobotID]
		if !ok {
			m.log.Warnf("external assignment for unknown robot %s dropped", a.RobotID)
			continue
		}
		if inBounds != nil && !inBounds(a.Target) {
			m.log.Warnf("external assignment for %s targets out-of-bounds (%d, %d)", a.RobotID, a.Target.X, a.Target.Y)
			continue
		}
		task := &model.Task{
			ID:          uuid.NewString(),
			Type:        a.TaskType,
			Priority:    a.Priority,
			Location:    a.Target,
			Status:      model.TaskPending,
			CreatedAt:   time.Now(),
			Description: a.Reason,
		}
		if !robot.AssignTask(task) {
			m.log.Warnf("external assignment for %s denied, queue full", a.RobotID)
			continue
		}
		tasksAssigned.WithLabelValues(string(task.Type)).Inc()
		applied++
	}
	return applied
}

// RecordCompletion registers a finished task for metrics derivation.
func (m *Manager) RecordCompletion(task *model.Task, completedAt time.Time) {
	m.completed = append(m.completed, task)
	rt := completedAt.Sub(task.CreatedAt)
	m.responseTimes = append(m.responseTimes, float64(rt.Milliseconds()))
	tasksCompleted.WithLabelValues(string(task.Type)).Inc()
	taskResponseTime.Observe(rt.Seconds())
}

// Restore seeds the completion aggregates from externally derived metrics,
// discarding per-task detail accumulated so far. Used when re-applying a
// full-state snapshot.
func (m *Manager) Restore(metrics model.FleetMetrics) {
	m.completed = nil
	m.responseTimes = nil
	m.baseCompleted = metrics.TasksCompleted
	m.baseAvgMs = metrics.AvgResponseMs
	m.baseDist = make(map[model.TaskType]int, len(metrics.TypeDistribution))
	for t, n := range metrics.TypeDistribution {
		m.baseDist[t] = n
	}
}

// CompletedCount returns how many tasks have completed since start.
func (m *Manager) CompletedCount() int {
	return m.baseCompleted + len(m.completed)
}

// AvgResponseTime returns the mean creation-to-completion time in
// milliseconds over all completed tasks, folding in any restored baseline.
func (m *Manager) AvgResponseTime() float64 {
	total := m.baseCompleted + len(m.responseTimes)
	if total == 0 {
		return 0
	}
	sum := m.baseAvgMs * float64(m.baseCompleted)
	if len(m.responseTimes) > 0 {
		sum += stat.Mean(m.responseTimes, nil) * float64(len(m.responseTimes))
	}
	return sum / float64(total)
}

// Efficiency returns the percentage of robots currently moving or working.
func (m *Manager) Efficiency(robots []Robot) float64 {
	if len(robots) == 0 {
		return 0
	}
	busy := 0
	for _, r := range robots {
		if r.State() == model.RobotMoving || r.State() == model.RobotWorking {
			busy++
		}
	}
	return float64(busy) / float64(len(robots)) * 100
}

// TypeDistribution returns the per-type completion histogram.
func (m *Manager) TypeDistribution() map[model.TaskType]int {
	dist := map[model.TaskType]int{
		model.TaskPickup:   0,
		model.TaskClean:    0,
		model.TaskEscort:   0,
		model.TaskRecharge: 0,
		model.TaskStandby:  0,
	}
	for t, n := range m.baseDist {
		dist[t] += n
	}
	for _, t := range m.completed {
		dist[t.Type]++
	}
	return dist
}

// Utilization returns the coarse per-robot utilization score: 100 when
// busy or charging, 50 when idle with queued work, else 0.
func (m *Manager) Utilization(robots []Robot) map[model.RobotID]float64 {
	util := make(map[model.RobotID]float64, len(robots))
	for _, r := range robots {
		switch {
		case r.State() == model.RobotMoving || r.State() == model.RobotWorking || r.State() == model.RobotCharging:
			util[r.ID()] = 100
		case r.QueueLen() > 0:
			util[r.ID()] = 50
		default:
			util[r.ID()] = 0
		}
	}
	return util
}
