// Package sim implements the simulation orchestrator: the tick scheduler
// that owns all robots, events and the human worker, advances them in
// lockstep and reconciles every assignment source into robot task queues.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/warebots/fleetsim/core/assist"
	"github.com/warebots/fleetsim/core/dispatch"
	"github.com/warebots/fleetsim/core/generator"
	"github.com/warebots/fleetsim/core/grid"
	"github.com/warebots/fleetsim/core/logger"
	coremetrics "github.com/warebots/fleetsim/core/metrics"
	"github.com/warebots/fleetsim/core/model"
	"github.com/warebots/fleetsim/core/notify"
	"github.com/warebots/fleetsim/core/robot"
	"github.com/warebots/fleetsim/core/workflow"
	"github.com/warebots/fleetsim/internal/eventbus"
)

const (
	// safetyRadius pauses robots this close to a human worker.
	safetyRadius = 3
	// congestionRadius triggers proactive rerouting between moving robots.
	congestionRadius = 2
	// robotNotifyTicks rate-limits robot position notifications.
	robotNotifyTicks = 5
	// metricsNotifyTicks rate-limits metrics notifications.
	metricsNotifyTicks = 20
	// workerStepTicks is how many ticks one human step takes at speed 1.
	workerStepTicks = 10
	// historyInterval spaces task-history samples.
	historyInterval = 10 * time.Second
	// maxEvents bounds the retained event history.
	maxEvents = 200
)

// assistEventTypes are the only incident types that consult the external
// reasoner.
var assistEventTypes = map[model.EventType]bool{
	model.EventSpill:       true,
	model.EventPackageDrop: true,
}

// Engine is the top-level simulation loop. All entity mutation happens
// under one mutex, so a tick never observes a half-applied command;
// external commands lock the same mutex and are therefore atomic with
// respect to the next tick. The only suspending operation, the reasoning
// call, runs outside the critical section and delivers its result through
// the inbox drained at the next tick boundary.
type Engine struct {
	mu sync.Mutex

	grid   *grid.Grid
	pf     *grid.Pathfinder
	robots []*robot.Robot
	tasks  *dispatch.Manager
	gen    *generator.Generator
	wf     *workflow.Engine
	assist *assist.Policy
	bus    eventbus.EventBus
	sink   coremetrics.Sink
	log    logger.Logger
	now    func() time.Time

	tickInterval time.Duration
	speed        float64
	tick         uint64

	activeEvents []model.Event
	allEvents    []model.Event
	worker       *model.HumanWorker
	workerSteps  float64

	logs        []model.LogEntry
	taskHistory []model.TaskHistoryEntry
	lastHistory time.Time

	inboxMu   sync.Mutex
	inbox     []func()
	assistSeq uint64
}

// Config tunes the simulation loop.
type Config struct {
	// TickMs is the fixed simulation time step in milliseconds.
	TickMs int `json:"tick_ms"`
	// Speed is the initial global speed multiplier.
	Speed float64 `json:"speed"`
	// Seed fixes the event generator random stream; 0 derives one from
	// the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TickMs == 0 {
		c.TickMs = 100
	}
	if c.Speed == 0 {
		c.Speed = 1
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.TickMs < 0 {
		return fmt.Errorf("tick_ms must not be negative")
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed must not be negative")
	}
	return nil
}

// New creates an engine with the default grid and fleet. policy may be
// nil to disable AI assistance entirely.
func New(cfg Config, policy *assist.Policy, bus eventbus.EventBus, sink coremetrics.Sink, log logger.Logger) *Engine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if bus == nil {
		bus = eventbus.New()
	}
	g := grid.New()
	pf := grid.NewPathfinder(g)
	e := &Engine{
		grid:         g,
		pf:           pf,
		tasks:        dispatch.NewManager(log),
		gen:          generator.New(g, cfg.Seed),
		wf:           workflow.NewEngine(log),
		assist:       policy,
		bus:          bus,
		sink:         sink,
		log:          log,
		now:          time.Now,
		tickInterval: time.Duration(cfg.TickMs) * time.Millisecond,
		speed:        cfg.Speed,
	}
	e.robots = []*robot.Robot{
		robot.New("R1", model.Position{X: 2, Y: 2}, "#00d4ff", 100, pf),
		robot.New("R2", model.Position{X: 5, Y: 10}, "#ff6b35", 87, pf),
		robot.New("R3", model.Position{X: 12, Y: 7}, "#a855f7", 72, pf),
		robot.New("R4", model.Position{X: 17, Y: 12}, "#00ff88", 55, pf),
	}
	e.lastHistory = e.now()
	return e
}

// Run advances the simulation on the fixed tick until the context is
// canceled.
func (e *Engine) Run(ctx context.Context) error {
	e.kickstart()
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Step(e.tickInterval)
		}
	}
}

// kickstart seeds visible activity on startup: a low robot heads to the
// charger and another is sent on patrol.
func (e *Engine) kickstart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.robots {
		if r.Battery() < 60 {
			r.ForceRecharge()
			e.addLog("BATTERY_LOW", fmt.Sprintf("%s auto-returning to charge (battery: %.0f%%)", r.ID(), r.Battery()), colorYellow)
			break
		}
	}
	for _, r := range e.robots {
		if r.State() == model.RobotIdle {
			r.NavigateTo(model.Position{X: 10, Y: 8})
			e.addLog("TASK_ASSIGNED", fmt.Sprintf("%s dispatched to storage zone for patrol", r.ID()), colorBlue)
			break
		}
	}
}

// Step advances the whole simulation by one tick.
func (e *Engine) Step(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drainInbox()
	e.tick++
	ticksTotal.Inc()
	speed := e.speed

	for _, r := range e.robots {
		if completed := r.Tick(elapsed, speed); completed != nil {
			e.onTaskCompleted(r, completed)
		}
		if r.NeedsCharging() && r.CurrentTask() != model.TaskRecharge {
			r.ForceRecharge()
			forcedRecharges.Inc()
			e.addLog("BATTERY_LOW", fmt.Sprintf("%s battery low (%.0f%%), auto-recharging", r.ID(), r.Battery()), colorYellow)
			e.bus.Publish(notify.SafetyAlert{
				Message:  fmt.Sprintf("%s battery critically low", r.ID()),
				Zone:     grid.ZoneFor(r.Position()),
				Severity: "medium",
			})
		}
		if e.tick%robotNotifyTicks == 0 {
			e.bus.Publish(notify.RobotUpdated{Robot: r.Snapshot()})
		}
	}

	e.checkCongestion()
	e.advanceHumanWorker()

	for _, ev := range e.gen.Tick(elapsed, speed) {
		e.handleEvent(ev)
	}

	now := e.now()
	if now.Sub(e.lastHistory) >= historyInterval {
		e.taskHistory = append(e.taskHistory, model.TaskHistoryEntry{
			Timestamp:      now,
			TasksCompleted: e.tasks.CompletedCount(),
		})
		e.lastHistory = now
	}

	if e.tick%metricsNotifyTicks == 0 {
		m := e.deriveMetrics()
		e.bus.Publish(notify.MetricsUpdated{Metrics: m})
		if err := e.sink.RecordFleetState(coremetrics.FleetRecord{
			Tick:           e.tick,
			Efficiency:     m.Efficiency,
			TasksCompleted: m.TasksCompleted,
			ActiveEvents:   len(e.activeEvents),
			Robots:         e.snapshotRobots(),
			Time:           now,
		}); err != nil {
			e.log.Errorf("fleet state metrics error: %v", err)
		}
	}
}

func (e *Engine) onTaskCompleted(r *robot.Robot, task *model.Task) {
	now := e.now()
	e.tasks.RecordCompletion(task, now)
	e.addLog("TASK_COMPLETED", fmt.Sprintf("%s completed %s task", r.ID(), task.Type), colorGreen)
	e.bus.Publish(notify.TaskCompleted{
		TaskID:   task.ID,
		RobotID:  r.ID(),
		Duration: now.Sub(task.CreatedAt),
	})
	if err := e.sink.RecordTaskCompletion([]coremetrics.TaskRecord{{
		Task:         *task,
		RobotID:      r.ID(),
		ResponseTime: now.Sub(task.CreatedAt),
		Time:         now,
	}}); err != nil {
		e.log.Errorf("task completion metrics error: %v", err)
	}
}

// handleEvent runs the full incident pipeline: workflow evaluation,
// optional reasoning request, then deterministic task assignment. The
// event leaves the active set once a task has been assigned; on
// assignment exhaustion it stays active rather than erroring.
func (e *Engine) handleEvent(ev model.Event) {
	e.activeEvents = append(e.activeEvents, ev)
	e.allEvents = append(e.allEvents, ev)
	if len(e.allEvents) > maxEvents {
		e.allEvents = e.allEvents[len(e.allEvents)-maxEvents:]
	}
	eventsGenerated.WithLabelValues(string(ev.Type)).Inc()
	e.addLog(string(ev.Type), ev.Description, eventColor(ev.Type))
	e.bus.Publish(notify.EventRaised{Event: ev})

	if ev.Type == model.EventHumanEntry {
		e.spawnHumanWorker(ev)
	}

	wfRobots := e.workflowRobots()
	actions := e.wf.Evaluate(ev, wfRobots)
	results := e.wf.Execute(actions, ev, wfRobots)
	if len(results) > 0 {
		for _, res := range results {
			e.addLog("WORKFLOW", res, colorPurple)
		}
		e.bus.Publish(notify.WorkflowExecuted{EventID: ev.ID, Results: results})
	}

	e.maybeRequestAssist(ev, actions)

	task := e.tasks.CreateTaskFromEvent(ev)
	assigned := e.tasks.AssignNearest(task, e.dispatchRobots())
	if assigned == nil {
		e.addLog("TASK_ASSIGNED", fmt.Sprintf("no robot available for %s at (%d, %d)", task.Type, task.Location.X, task.Location.Y), colorOrange)
		return
	}
	e.addLog("TASK_ASSIGNED", fmt.Sprintf("%s assigned to %s at (%d, %d)", assigned.ID(), task.Type, task.Location.X, task.Location.Y), colorBlue)
	e.bus.Publish(notify.TaskAssigned{
		TaskID:   task.ID,
		RobotID:  assigned.ID(),
		TaskType: task.Type,
		Location: task.Location,
	})
	e.resolveEvent(ev.ID)
}

func (e *Engine) resolveEvent(id string) {
	kept := e.activeEvents[:0]
	for i := range e.activeEvents {
		if e.activeEvents[i].ID == id {
			e.activeEvents[i].Resolved = true
			continue
		}
		kept = append(kept, e.activeEvents[i])
	}
	e.activeEvents = kept
	for i := range e.allEvents {
		if e.allEvents[i].ID == id {
			e.allEvents[i].Resolved = true
		}
	}
}

// maybeRequestAssist launches an asynchronous reasoning request when the
// event type qualifies and the rule graph either asked for AI or produced
// no actions. The response is applied through the inbox at a later tick
// boundary; a newer request supersedes any in-flight one, so stale
// responses are dropped.
func (e *Engine) maybeRequestAssist(ev model.Event, actions []workflow.Action) {
	if e.assist == nil {
		return
	}
	if !assistEventTypes[ev.Type] {
		e.bus.Publish(notify.AssistSkipped{EventType: ev.Type})
		return
	}
	if !workflow.NeedsAI(actions) && len(actions) != 0 {
		return
	}

	e.assistSeq++
	seq := e.assistSeq
	state := e.assistState()
	policy := e.assist
	go func() {
		resp := policy.Decide(context.Background(), state, ev)
		e.enqueue(func() {
			if seq != e.assistSeq {
				e.log.Debugf("stale assist response for %s dropped", ev.Type)
				return
			}
			e.applyAssist(resp)
		})
	}()
}

// applyAssist runs inside the tick critical section via the inbox.
func (e *Engine) applyAssist(resp model.AssistResponse) {
	e.bus.Publish(notify.AssistDecision{Response: resp})
	source := "AI"
	if resp.Fallback {
		source = "fallback"
	}
	e.addLog("AI_DECISION", fmt.Sprintf("%s decision: %s", source, resp.Reasoning), colorPurple)
	for _, alert := range resp.Alerts {
		e.addLog("SAFETY_ALERT", alert, colorOrange)
	}
	if len(resp.Assignments) == 0 {
		return
	}
	applied := e.tasks.ApplyExternal(resp.Assignments, e.dispatchRobots(), e.grid.InBounds)
	if applied > 0 {
		e.log.Infof("applied %d %s assignments", applied, source)
	}
}

func (e *Engine) spawnHumanWorker(ev model.Event) {
	e.worker = e.gen.HumanWorker()
	e.workerSteps = 0
	for _, r := range e.robots {
		if r.Position().Manhattan(ev.Location) <= safetyRadius {
			r.Pause()
			e.addLog("SAFETY_ALERT", fmt.Sprintf("%s paused, human worker nearby", r.ID()), colorOrange)
			e.bus.Publish(notify.SafetyAlert{
				Message:  fmt.Sprintf("%s paused for human safety", r.ID()),
				Zone:     grid.ZoneFor(ev.Location),
				Severity: "high",
			})
		}
	}
}

// advanceHumanWorker moves the scripted worker one step every
// workerStepTicks ticks, scaled by speed. Deactivation resumes every
// paused robot.
func (e *Engine) advanceHumanWorker() {
	if e.worker == nil || !e.worker.Active {
		return
	}
	e.workerSteps += e.speed
	if e.workerSteps < workerStepTicks {
		return
	}
	e.workerSteps -= workerStepTicks
	e.worker.PathIndex++
	if e.worker.PathIndex >= len(e.worker.Path) {
		e.worker = nil
		for _, r := range e.robots {
			if r.State() == model.RobotPaused {
				r.Resume()
				e.addLog("SAFETY_ALERT", fmt.Sprintf("%s resumed, human worker left zone", r.ID()), colorGreen)
			}
		}
		return
	}
	e.worker.Position = e.worker.Path[e.worker.PathIndex]
}

// checkCongestion runs after all robots advanced for the tick. When two
// moving robots come within the congestion radius, the second is rerouted
// around the first's current cell.
func (e *Engine) checkCongestion() {
	for i := 0; i < len(e.robots); i++ {
		for j := i + 1; j < len(e.robots); j++ {
			a, b := e.robots[i], e.robots[j]
			if a.State() != model.RobotMoving || b.State() != model.RobotMoving {
				continue
			}
			if a.Position().Manhattan(b.Position()) > congestionRadius {
				continue
			}
			if target := b.Target(); target != nil {
				b.NavigateTo(*target, a.Position())
			}
		}
	}
}

func (e *Engine) enqueue(fn func()) {
	e.inboxMu.Lock()
	e.inbox = append(e.inbox, fn)
	e.inboxMu.Unlock()
}

// drainInbox applies queued cross-context deliveries (reasoning responses)
// at the tick boundary.
func (e *Engine) drainInbox() {
	e.inboxMu.Lock()
	pending := e.inbox
	e.inbox = nil
	e.inboxMu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (e *Engine) dispatchRobots() []dispatch.Robot {
	out := make([]dispatch.Robot, len(e.robots))
	for i, r := range e.robots {
		out[i] = r
	}
	return out
}

func (e *Engine) workflowRobots() []workflow.Robot {
	out := make([]workflow.Robot, len(e.robots))
	for i, r := range e.robots {
		out[i] = r
	}
	return out
}

func (e *Engine) snapshotRobots() []model.RobotSnapshot {
	out := make([]model.RobotSnapshot, len(e.robots))
	for i, r := range e.robots {
		out[i] = r.Snapshot()
	}
	return out
}

func (e *Engine) assistState() model.AssistState {
	state := model.AssistState{
		Robots:        make([]model.AssistRobot, 0, len(e.robots)),
		ActiveEvents:  make([]model.AssistEvent, 0, len(e.activeEvents)),
		ZoneOccupancy: e.zoneOccupancy(),
	}
	for _, r := range e.robots {
		state.Robots = append(state.Robots, model.AssistRobot{
			ID:          r.ID(),
			Position:    r.Position(),
			State:       r.State(),
			Battery:     r.Battery(),
			CurrentTask: r.CurrentTask(),
			QueueLength: r.QueueLen(),
		})
	}
	for _, ev := range e.activeEvents {
		state.ActiveEvents = append(state.ActiveEvents, model.AssistEvent{
			Type:     ev.Type,
			Location: ev.Location,
			Priority: ev.Priority,
		})
	}
	if e.worker != nil && e.worker.Active {
		pos := e.worker.Position
		state.HumanWorker = &pos
	}
	return state
}

func (e *Engine) zoneOccupancy() model.ZoneOccupancy {
	occ := model.NewZoneOccupancy()
	for _, r := range e.robots {
		if z := grid.ZoneFor(r.Position()); z != model.ZoneNone {
			occ[z]++
		}
	}
	return occ
}

func (e *Engine) deriveMetrics() model.FleetMetrics {
	robots := e.dispatchRobots()
	return model.FleetMetrics{
		TasksCompleted:   e.tasks.CompletedCount(),
		TotalTasks:       e.tasks.CompletedCount() + len(e.activeEvents),
		AvgResponseMs:    e.tasks.AvgResponseTime(),
		Efficiency:       e.tasks.Efficiency(robots),
		TaskHistory:      append([]model.TaskHistoryEntry(nil), e.taskHistory...),
		Utilization:      e.tasks.Utilization(robots),
		TypeDistribution: e.tasks.TypeDistribution(),
	}
}
