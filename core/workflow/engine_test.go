package workflow

import (
	"testing"

	"github.com/warebots/fleetsim/core/model"
)

type fakeRobot struct {
	id       model.RobotID
	pos      model.Position
	state    model.RobotState
	battery  float64
	queueLen int
	current  model.TaskType

	navigated  []model.Position
	paused     bool
	resumed    bool
	recharging bool
}

func (f *fakeRobot) ID() model.RobotID           { return f.id }
func (f *fakeRobot) Position() model.Position    { return f.pos }
func (f *fakeRobot) State() model.RobotState     { return f.state }
func (f *fakeRobot) Battery() float64            { return f.battery }
func (f *fakeRobot) QueueLen() int               { return f.queueLen }
func (f *fakeRobot) CurrentTask() model.TaskType { return f.current }
func (f *fakeRobot) Pause()                      { f.paused = true }
func (f *fakeRobot) Resume()                     { f.resumed = true }
func (f *fakeRobot) ForceRecharge()              { f.recharging = true }
func (f *fakeRobot) NavigateTo(target model.Position, blocked ...model.Position) {
	f.navigated = append(f.navigated, target)
}

func spillEvent(priority int) model.Event {
	return model.Event{
		ID:       "ev-1",
		Type:     model.EventSpill,
		Location: model.Position{X: 10, Y: 7},
		Priority: priority,
	}
}

func newGraph(t *testing.T, nodes []Node, edges []Edge) *Engine {
	t.Helper()
	e := NewEngine(nil)
	e.Update(nodes, edges)
	return e
}

func TestEvaluateTriggerChain(t *testing.T) {
	e := newGraph(t,
		[]Node{
			NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "SPILL"}),
			NodeFromConfig("a1", "actionNode", map[string]string{"action": "dispatch_nearest"}),
		},
		[]Edge{{ID: "e1", Source: "t1", Target: "a1"}},
	)
	actions := e.Evaluate(spillEvent(4), nil)
	if len(actions) != 1 || actions[0].Kind != ActionDispatchNearest {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}

func TestEvaluateIgnoresOtherTriggers(t *testing.T) {
	e := newGraph(t,
		[]Node{
			NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "HUMAN_ENTRY"}),
			NodeFromConfig("a1", "actionNode", map[string]string{"action": "pause_all"}),
		},
		[]Edge{{ID: "e1", Source: "t1", Target: "a1"}},
	)
	if actions := e.Evaluate(spillEvent(4), nil); len(actions) != 0 {
		t.Fatalf("expected no actions, got %+v", actions)
	}
}

func TestConditionBranching(t *testing.T) {
	nodes := []Node{
		NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "SPILL"}),
		NodeFromConfig("c1", "conditionNode", map[string]string{"condition": "priority_gt_3"}),
		NodeFromConfig("yes", "actionNode", map[string]string{"action": "dispatch_nearest"}),
		NodeFromConfig("no", "actionNode", map[string]string{"action": "queue_task"}),
	}
	edges := []Edge{
		{ID: "e1", Source: "t1", Target: "c1"},
		{ID: "e2", Source: "c1", Target: "yes", Handle: HandleYes},
		{ID: "e3", Source: "c1", Target: "no", Handle: HandleNo},
	}
	e := newGraph(t, nodes, edges)

	high := e.Evaluate(spillEvent(4), nil)
	if len(high) != 1 || high[0].Kind != ActionDispatchNearest {
		t.Fatalf("priority 4 took wrong branch: %+v", high)
	}
	low := e.Evaluate(spillEvent(2), nil)
	if len(low) != 1 || low[0].Kind != ActionQueueTask {
		t.Fatalf("priority 2 took wrong branch: %+v", low)
	}
}

func TestEmptyHandleCountsAsYes(t *testing.T) {
	nodes := []Node{
		NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "SPILL"}),
		NodeFromConfig("c1", "conditionNode", map[string]string{"condition": "priority_gt_3"}),
		NodeFromConfig("a1", "actionNode", map[string]string{"action": "log_alert"}),
	}
	edges := []Edge{
		{ID: "e1", Source: "t1", Target: "c1"},
		{ID: "e2", Source: "c1", Target: "a1"},
	}
	e := newGraph(t, nodes, edges)

	if actions := e.Evaluate(spillEvent(4), nil); len(actions) != 1 {
		t.Fatalf("unlabeled edge must fire on a true condition: %+v", actions)
	}
	if actions := e.Evaluate(spillEvent(2), nil); len(actions) != 0 {
		t.Fatalf("unlabeled edge must not fire on a false condition: %+v", actions)
	}
}

func TestUnknownConditionFailsOpen(t *testing.T) {
	nodes := []Node{
		NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "SPILL"}),
		NodeFromConfig("c1", "conditionNode", map[string]string{"condition": "zone_is_cold"}),
		NodeFromConfig("a1", "actionNode", map[string]string{"action": "log_alert"}),
	}
	edges := []Edge{
		{ID: "e1", Source: "t1", Target: "c1"},
		{ID: "e2", Source: "c1", Target: "a1", Handle: HandleYes},
	}
	e := newGraph(t, nodes, edges)
	if actions := e.Evaluate(spillEvent(2), nil); len(actions) != 1 {
		t.Fatalf("unknown condition must evaluate true: %+v", actions)
	}
}

func TestCyclicGraphTerminates(t *testing.T) {
	nodes := []Node{
		NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "SPILL"}),
		NodeFromConfig("a1", "actionNode", map[string]string{"action": "log_alert"}),
		NodeFromConfig("a2", "actionNode", map[string]string{"action": "queue_task"}),
	}
	edges := []Edge{
		{ID: "e1", Source: "t1", Target: "a1"},
		{ID: "e2", Source: "a1", Target: "a2"},
		{ID: "e3", Source: "a2", Target: "a1"},
	}
	e := newGraph(t, nodes, edges)
	actions := e.Evaluate(spillEvent(4), nil)
	if len(actions) != 2 {
		t.Fatalf("cycle must visit each node once, got %+v", actions)
	}
}

func TestAIDecisionNodeEmitsAskAI(t *testing.T) {
	nodes := []Node{
		NodeFromConfig("t1", "triggerNode", map[string]string{"eventType": "SPILL"}),
		NodeFromConfig("ai1", "aiDecisionNode", nil),
	}
	edges := []Edge{{ID: "e1", Source: "t1", Target: "ai1"}}
	e := newGraph(t, nodes, edges)

	actions := e.Evaluate(spillEvent(4), nil)
	if !NeedsAI(actions) {
		t.Fatalf("AI decision node must request reasoning: %+v", actions)
	}
}

func TestExecuteDispatchNearest(t *testing.T) {
	e := NewEngine(nil)
	near := &fakeRobot{id: "R1", pos: model.Position{X: 9, Y: 7}, state: model.RobotIdle, battery: 80}
	far := &fakeRobot{id: "R2", pos: model.Position{X: 0, Y: 0}, state: model.RobotIdle, battery: 80}
	drained := &fakeRobot{id: "R3", pos: model.Position{X: 10, Y: 7}, state: model.RobotIdle, battery: 10}

	ev := spillEvent(4)
	results := e.Execute([]Action{{Kind: ActionDispatchNearest}}, ev, []Robot{far, near, drained})
	if len(results) != 1 {
		t.Fatalf("expected one result, got %v", results)
	}
	if len(near.navigated) != 1 || !near.navigated[0].Equal(ev.Location) {
		t.Fatalf("nearest healthy robot was not dispatched")
	}
	if len(drained.navigated) != 0 {
		t.Fatalf("drained robot must not be dispatched")
	}
}

func TestExecutePauseAndResume(t *testing.T) {
	e := NewEngine(nil)
	moving := &fakeRobot{id: "R1", state: model.RobotMoving}
	idle := &fakeRobot{id: "R2", state: model.RobotIdle}
	paused := &fakeRobot{id: "R3", state: model.RobotPaused}

	e.Execute([]Action{{Kind: ActionPauseAll}}, spillEvent(4), []Robot{moving, idle, paused})
	if !moving.paused {
		t.Fatalf("moving robot not paused")
	}
	if idle.paused {
		t.Fatalf("idle robot must not be paused")
	}

	e.Execute([]Action{{Kind: ActionResumeAll}}, spillEvent(4), []Robot{moving, idle, paused})
	if !paused.resumed {
		t.Fatalf("paused robot not resumed")
	}
}

func TestExecuteRechargeAll(t *testing.T) {
	e := NewEngine(nil)
	idle := &fakeRobot{id: "R1", state: model.RobotIdle}
	charging := &fakeRobot{id: "R2", state: model.RobotCharging}
	heading := &fakeRobot{id: "R3", state: model.RobotMoving, current: model.TaskRecharge}

	e.Execute([]Action{{Kind: ActionRechargeAll}}, spillEvent(4), []Robot{idle, charging, heading})
	if !idle.recharging {
		t.Fatalf("idle robot not sent to charge")
	}
	if charging.recharging || heading.recharging {
		t.Fatalf("already-charging robots must be skipped")
	}
}

func TestExecuteUnknownAction(t *testing.T) {
	e := NewEngine(nil)
	results := e.Execute([]Action{{Kind: ActionUnknown, Name: "teleport"}}, spillEvent(4), nil)
	if len(results) != 1 {
		t.Fatalf("unknown action must produce a descriptive result")
	}
}
