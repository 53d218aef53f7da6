// Package robot implements the per-robot state machine: movement along a
// computed path, battery accounting, task queueing and dwell timing.
package robot

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/warebots/fleetsim/core/grid"
	"github.com/warebots/fleetsim/core/model"
)

const (
	batteryDrainPerTile = 1.0
	chargeRatePerSecond = 5.0
	// LowBatteryThreshold is the battery level below which a robot must
	// return to the charging zone.
	LowBatteryThreshold = 15.0
	// QueueCap bounds the task queue; assignments beyond it are denied.
	QueueCap = 3
	// moveTimePerTile is the fixed traversal time for one grid cell.
	moveTimePerTile = 200 * time.Millisecond
	// rechargePriority outranks every event-derived priority.
	rechargePriority = 5
)

// Pathfinder computes walkable routes between grid positions.
type Pathfinder interface {
	FindPath(start, goal model.Position, blocked []model.Position) []model.Position
}

// Robot owns one robot's position, battery, state machine and task queue.
// It is advanced exclusively by the simulation engine; it is not safe for
// concurrent use.
type Robot struct {
	id      model.RobotID
	pos     model.Position
	target  *model.Position
	state   model.RobotState
	battery float64
	current *model.Task
	queue   []*model.Task
	path    []model.Position
	color   string
	pf      Pathfinder

	moveProgress time.Duration
	chargeAccum  time.Duration
	workProgress time.Duration
}

// New creates an idle robot at the given position.
func New(id model.RobotID, pos model.Position, color string, battery float64, pf Pathfinder) *Robot {
	return &Robot{
		id:      id,
		pos:     pos,
		state:   model.RobotIdle,
		battery: battery,
		color:   color,
		pf:      pf,
	}
}

func (r *Robot) ID() model.RobotID { return r.id }

func (r *Robot) Position() model.Position { return r.pos }

func (r *Robot) State() model.RobotState { return r.state }

func (r *Robot) Battery() float64 { return r.battery }

func (r *Robot) QueueLen() int { return len(r.queue) }

// Target returns a copy of the current navigation target, or nil.
func (r *Robot) Target() *model.Position {
	if r.target == nil {
		return nil
	}
	t := *r.target
	return &t
}

// CurrentTask returns the type of the task in progress, or "" when idle.
func (r *Robot) CurrentTask() model.TaskType {
	if r.current == nil {
		return ""
	}
	return r.current.Type
}

// NeedsCharging reports whether the battery dropped below the threshold
// and the robot is not already charging.
func (r *Robot) NeedsCharging() bool {
	return r.battery < LowBatteryThreshold && r.state != model.RobotCharging
}

// IsAvailable is the single-sourced availability predicate used by the
// default assignment policy: idle or charging, enough battery, and queue
// headroom.
func (r *Robot) IsAvailable() bool {
	return (r.state == model.RobotIdle || r.state == model.RobotCharging) &&
		r.battery >= LowBatteryThreshold &&
		len(r.queue) < QueueCap
}

// AssignTask hands the robot a task. If the robot is idle or charging with
// no current task, the task starts immediately; otherwise it is inserted
// into the priority-sorted queue. Returns false when the queue is full and
// the task cannot start, leaving the task untouched.
func (r *Robot) AssignTask(task *model.Task) bool {
	if task == nil {
		return false
	}
	if r.current == nil && (r.state == model.RobotIdle || r.state == model.RobotCharging) {
		task.AssignedRobot = r.id
		r.startTask(task)
		return true
	}
	if len(r.queue) >= QueueCap {
		return false
	}
	task.AssignedRobot = r.id
	task.Status = model.TaskPending
	r.queue = append(r.queue, task)
	sort.SliceStable(r.queue, func(i, j int) bool {
		return r.queue[i].Priority > r.queue[j].Priority
	})
	return true
}

func (r *Robot) startTask(task *model.Task) {
	r.current = task
	task.Status = model.TaskInProgress
	switch task.Type {
	case model.TaskRecharge:
		r.NavigateTo(grid.ChargeZone)
	default:
		r.NavigateTo(task.Location)
	}
}

// NavigateTo computes a fresh path to target and starts moving. Positions
// in blocked are avoided for this route only.
func (r *Robot) NavigateTo(target model.Position, blocked ...model.Position) {
	t := target
	r.target = &t
	r.path = r.pf.FindPath(r.pos, target, blocked)
	// The degenerate no-route fallback still carries the start cell.
	if len(r.path) > 0 && r.path[0].Equal(r.pos) {
		r.path = r.path[1:]
	}
	r.state = model.RobotMoving
	r.moveProgress = 0
}

// Pause suspends a moving or working robot. Charging is never paused.
func (r *Robot) Pause() {
	if r.state == model.RobotMoving || r.state == model.RobotWorking {
		r.state = model.RobotPaused
	}
}

// Resume restores the state implied by the remaining path and task.
func (r *Robot) Resume() {
	if r.state != model.RobotPaused {
		return
	}
	switch {
	case len(r.path) > 0:
		r.state = model.RobotMoving
	case r.current != nil:
		r.state = model.RobotWorking
	default:
		r.state = model.RobotIdle
	}
}

// ForceRecharge preempts whatever the robot is doing and redirects it to
// the charging zone with a maximum-priority synthetic recharge task. The
// preempted task returns to the front of the queue with status PENDING.
// A robot already charging or en route to the charger is left alone, so
// repeated calls cannot pile up recharge tasks or reset route progress.
func (r *Robot) ForceRecharge() {
	if r.state == model.RobotCharging {
		return
	}
	if r.current != nil && r.current.Type == model.TaskRecharge {
		return
	}
	recharge := &model.Task{
		ID:            uuid.NewString(),
		Type:          model.TaskRecharge,
		Priority:      rechargePriority,
		Location:      grid.ChargeZone,
		AssignedRobot: r.id,
		Status:        model.TaskInProgress,
		CreatedAt:     time.Now(),
		Description:   fmt.Sprintf("%s auto-returning to charge (battery: %.0f%%)", r.id, r.battery),
	}
	if r.current != nil {
		r.current.Status = model.TaskPending
		r.queue = append([]*model.Task{r.current}, r.queue...)
	}
	r.current = recharge
	r.NavigateTo(grid.ChargeZone)
}

// Tick advances the robot by one simulation step. The elapsed tick time is
// scaled by the speed multiplier. Returns the completed task, if any task
// finished during this tick.
func (r *Robot) Tick(elapsed time.Duration, speed float64) *model.Task {
	effective := time.Duration(float64(elapsed) * speed)

	switch r.state {
	case model.RobotPaused:
		return nil

	case model.RobotCharging:
		r.chargeAccum += effective
		for r.chargeAccum >= time.Second {
			r.battery = math.Min(100, r.battery+chargeRatePerSecond)
			r.chargeAccum -= time.Second
		}
		if r.battery >= 100 {
			return r.completeCurrentTask()
		}
		return nil

	case model.RobotMoving:
		r.moveProgress += effective
		for r.moveProgress >= moveTimePerTile && len(r.path) > 0 {
			r.moveProgress -= moveTimePerTile
			r.pos = r.path[0]
			r.path = r.path[1:]
			r.battery = math.Max(0, r.battery-batteryDrainPerTile)
		}
		if len(r.path) == 0 {
			r.arrive()
		}
		return nil

	case model.RobotWorking:
		if r.current == nil {
			r.state = model.RobotIdle
			return nil
		}
		r.workProgress += effective
		left := r.current.Dwell - r.workProgress
		if left < 0 {
			left = 0
		}
		r.current.DwellLeft = left
		if r.workProgress >= r.current.Dwell {
			return r.completeCurrentTask()
		}
		return nil

	case model.RobotIdle:
		if len(r.queue) > 0 {
			next := r.queue[0]
			r.queue = r.queue[1:]
			r.startTask(next)
		}
		return nil
	}
	return nil
}

// arrive handles path exhaustion while moving.
func (r *Robot) arrive() {
	if r.current == nil {
		r.state = model.RobotIdle
		r.target = nil
		return
	}
	if r.current.Type == model.TaskRecharge {
		r.state = model.RobotCharging
		r.chargeAccum = 0
		return
	}
	r.state = model.RobotWorking
	r.workProgress = 0
	dwell := DwellTime(r.current.Type)
	r.current.Dwell = dwell
	r.current.DwellLeft = dwell
}

func (r *Robot) completeCurrentTask() *model.Task {
	if r.current == nil {
		return nil
	}
	completed := r.current
	completed.Status = model.TaskCompleted
	r.current = nil
	r.target = nil
	r.state = model.RobotIdle
	r.workProgress = 0

	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.startTask(next)
	}
	return completed
}

// DwellTime is the fixed on-site duration per task type.
func DwellTime(t model.TaskType) time.Duration {
	switch t {
	case model.TaskPickup:
		return 2 * time.Second
	case model.TaskClean:
		return 3 * time.Second
	case model.TaskEscort:
		return 5 * time.Second
	case model.TaskStandby:
		return 0
	default:
		return time.Second
	}
}

// Snapshot copies the robot's externally visible state.
func (r *Robot) Snapshot() model.RobotSnapshot {
	snap := model.RobotSnapshot{
		ID:       r.id,
		Position: r.pos,
		State:    r.state,
		Battery:  r.battery,
		Color:    r.color,
		Queue:    make([]model.Task, 0, len(r.queue)),
		Path:     append([]model.Position(nil), r.path...),
	}
	if r.target != nil {
		t := *r.target
		snap.Target = &t
	}
	if r.current != nil {
		cur := *r.current
		snap.Current = &cur
	}
	for _, q := range r.queue {
		snap.Queue = append(snap.Queue, *q)
	}
	return snap
}

// FromSnapshot reconstructs a robot from a snapshot, for tick-boundary
// state replacement.
func FromSnapshot(snap model.RobotSnapshot, pf Pathfinder) *Robot {
	r := &Robot{
		id:      snap.ID,
		pos:     snap.Position,
		state:   snap.State,
		battery: snap.Battery,
		color:   snap.Color,
		pf:      pf,
		path:    append([]model.Position(nil), snap.Path...),
	}
	if snap.Target != nil {
		t := *snap.Target
		r.target = &t
	}
	if snap.Current != nil {
		cur := *snap.Current
		r.current = &cur
	}
	for i := range snap.Queue {
		q := snap.Queue[i]
		r.queue = append(r.queue, &q)
	}
	return r
}
