package sim

import (
	"fmt"

	"github.com/warebots/fleetsim/core/model"
	"github.com/warebots/fleetsim/core/notify"
	"github.com/warebots/fleetsim/core/robot"
	"github.com/warebots/fleetsim/core/workflow"
)

// snapshotEvents caps the event history included in a snapshot.
const snapshotEvents = 50

// Snapshot returns the full warehouse state at a tick boundary.
func (e *Engine) Snapshot() model.WarehouseState {
	e.mu.Lock()
	defer e.mu.Unlock()

	events := e.allEvents
	if len(events) > snapshotEvents {
		events = events[len(events)-snapshotEvents:]
	}
	state := model.WarehouseState{
		Robots:        e.snapshotRobots(),
		Events:        append([]model.Event(nil), events...),
		ActiveEvents:  append([]model.Event(nil), e.activeEvents...),
		ZoneOccupancy: e.zoneOccupancy(),
		Grid:          e.grid.Tiles(),
		Obstacles:     e.grid.Obstacles(),
		Metrics:       e.deriveMetrics(),
		Speed:         e.speed,
		Tick:          e.tick,
	}
	if e.worker != nil {
		w := *e.worker
		w.Path = append([]model.Position(nil), e.worker.Path...)
		state.HumanWorker = &w
	}
	return state
}

// Restore replaces the simulation state with a previously captured
// snapshot. The replacement is atomic with respect to ticks; in-flight
// reasoning requests from the old state are invalidated.
func (e *Engine) Restore(state model.WarehouseState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.robots = e.robots[:0]
	for _, snap := range state.Robots {
		e.robots = append(e.robots, robot.FromSnapshot(snap, e.pf))
	}
	e.allEvents = append([]model.Event(nil), state.Events...)
	e.activeEvents = append([]model.Event(nil), state.ActiveEvents...)
	e.worker = nil
	if state.HumanWorker != nil {
		w := *state.HumanWorker
		w.Path = append([]model.Position(nil), state.HumanWorker.Path...)
		e.worker = &w
	}
	e.workerSteps = 0
	e.speed = state.Speed
	e.tick = state.Tick
	e.taskHistory = append([]model.TaskHistoryEntry(nil), state.Metrics.TaskHistory...)
	e.tasks.Restore(state.Metrics)
	e.assistSeq++
	e.log.Infof("state restored: %d robots, %d active events, tick %d", len(e.robots), len(e.activeEvents), e.tick)
}

// RobotCommand applies a manual command to one robot. Supported commands
// are "move" (requires dest), "pause", "resume" and "recharge". Returns
// false for unknown robots, unknown commands or a move without target.
func (e *Engine) RobotCommand(id model.RobotID, command string, dest *model.Position) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	var target *robot.Robot
	for _, r := range e.robots {
		if r.ID() == id {
			target = r
			break
		}
	}
	if target == nil {
		e.log.Warnf("command %q for unknown robot %s", command, id)
		return false
	}

	switch command {
	case "move":
		if dest == nil || !e.grid.InBounds(*dest) {
			return false
		}
		target.NavigateTo(*dest)
		e.addLog("TASK_ASSIGNED", fmt.Sprintf("%s manually dispatched to (%d, %d)", id, dest.X, dest.Y), colorBlue)
	case "pause":
		target.Pause()
		e.addLog("SAFETY_ALERT", fmt.Sprintf("%s manually paused", id), colorOrange)
	case "resume":
		target.Resume()
		e.addLog("SAFETY_ALERT", fmt.Sprintf("%s manually resumed", id), colorGreen)
	case "recharge":
		target.ForceRecharge()
		e.addLog("BATTERY_LOW", fmt.Sprintf("%s manually sent to charge", id), colorYellow)
	default:
		e.log.Warnf("unknown robot command %q", command)
		return false
	}
	e.bus.Publish(notify.RobotUpdated{Robot: target.Snapshot()})
	return true
}

// TriggerEvent injects a manual incident. When loc is nil a random
// walkable tile is chosen. The event runs the same pipeline as generated
// ones.
func (e *Engine) TriggerEvent(typ model.EventType, loc *model.Position) model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev := e.gen.Manual(typ, loc)
	e.handleEvent(ev)
	return ev
}

// ClearEvents resolves and removes every active event. Clearing an empty
// set is a no-op.
func (e *Engine) ClearEvents() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.activeEvents) == 0 {
		return
	}
	for i := range e.activeEvents {
		e.resolveEventHistory(e.activeEvents[i].ID)
	}
	e.activeEvents = e.activeEvents[:0]
	e.addLog("WORKFLOW", "All active events cleared", colorPurple)
	e.bus.Publish(notify.EventsCleared{})
}

func (e *Engine) resolveEventHistory(id string) {
	for i := range e.allEvents {
		if e.allEvents[i].ID == id {
			e.allEvents[i].Resolved = true
		}
	}
}

// SetSpeed changes the global speed multiplier. Non-positive values are
// ignored.
func (e *Engine) SetSpeed(mult float64) {
	if mult <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = mult
	e.addLog("WORKFLOW", fmt.Sprintf("Simulation speed set to %gx", mult), colorPurple)
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Tick returns the current tick counter.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// UpdateWorkflow replaces the rule graph evaluated for future events.
func (e *Engine) UpdateWorkflow(nodes []workflow.Node, edges []workflow.Edge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wf.Update(nodes, edges)
	e.addLog("WORKFLOW", fmt.Sprintf("Workflow updated: %d nodes, %d edges", len(nodes), len(edges)), colorPurple)
}
