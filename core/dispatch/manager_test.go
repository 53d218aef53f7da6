package dispatch

import (
	"testing"
	"time"

	"github.com/warebots/fleetsim/core/grid"
	"github.com/warebots/fleetsim/core/model"
)

// fakeRobot implements the Robot interface for assignment tests.
type fakeRobot struct {
	id        model.RobotID
	pos       model.Position
	state     model.RobotState
	battery   float64
	queueLen  int
	available bool
	denied    bool
	assigned  []*model.Task
}

func (f *fakeRobot) ID() model.RobotID        { return f.id }
func (f *fakeRobot) Position() model.Position { return f.pos }
func (f *fakeRobot) State() model.RobotState  { return f.state }
func (f *fakeRobot) Battery() float64         { return f.battery }
func (f *fakeRobot) QueueLen() int            { return f.queueLen }
func (f *fakeRobot) IsAvailable() bool        { return f.available }
func (f *fakeRobot) AssignTask(t *model.Task) bool {
	if f.denied {
		return false
	}
	f.assigned = append(f.assigned, t)
	return true
}

func TestCreateTaskFromEvent(t *testing.T) {
	m := NewManager(nil)
	ev := model.Event{
		ID:       "ev-1",
		Type:     model.EventPackageDrop,
		Location: model.Position{X: 10, Y: 7},
		Priority: 3,
	}
	task := m.CreateTaskFromEvent(ev)
	if task.Type != model.TaskPickup {
		t.Fatalf("expected PICKUP, got %s", task.Type)
	}
	if !task.Location.Equal(ev.Location) {
		t.Fatalf("task location (%d, %d) differs from event", task.Location.X, task.Location.Y)
	}
	if task.Status != model.TaskPending {
		t.Fatalf("expected PENDING, got %s", task.Status)
	}
	if task.Priority != 3 {
		t.Fatalf("expected priority 3, got %d", task.Priority)
	}
}

func TestCreateRechargeTaskTargetsCharger(t *testing.T) {
	m := NewManager(nil)
	ev := model.Event{
		ID:       "ev-2",
		Type:     model.EventBatteryLow,
		Location: model.Position{X: 15, Y: 12},
		Priority: 2,
	}
	task := m.CreateTaskFromEvent(ev)
	if task.Type != model.TaskRecharge {
		t.Fatalf("expected RECHARGE, got %s", task.Type)
	}
	if !task.Location.Equal(grid.ChargeZone) {
		t.Fatalf("recharge task must target the charging zone, got (%d, %d)", task.Location.X, task.Location.Y)
	}
}

func TestAssignNearestPrefersClosestAvailable(t *testing.T) {
	m := NewManager(nil)
	near := &fakeRobot{id: "R1", pos: model.Position{X: 9, Y: 7}, state: model.RobotIdle, available: true}
	far := &fakeRobot{id: "R2", pos: model.Position{X: 0, Y: 0}, state: model.RobotIdle, available: true}
	task := &model.Task{ID: "t", Type: model.TaskPickup, Location: model.Position{X: 10, Y: 7}}

	got := m.AssignNearest(task, []Robot{far, near})
	if got == nil || got.ID() != "R1" {
		t.Fatalf("expected R1, got %v", got)
	}
	if len(near.assigned) != 1 {
		t.Fatalf("task not handed to R1")
	}
}

func TestAssignNearestFallsBackToIdle(t *testing.T) {
	m := NewManager(nil)
	// Low battery disqualifies from tier one but not tier two.
	lowBattery := &fakeRobot{id: "R1", pos: model.Position{X: 9, Y: 7}, state: model.RobotIdle, battery: 10}
	busy := &fakeRobot{id: "R2", pos: model.Position{X: 10, Y: 7}, state: model.RobotMoving, queueLen: 1}
	task := &model.Task{ID: "t", Type: model.TaskClean, Location: model.Position{X: 10, Y: 7}}

	got := m.AssignNearest(task, []Robot{lowBattery, busy})
	if got == nil || got.ID() != "R1" {
		t.Fatalf("expected idle low-battery R1, got %v", got)
	}
}

func TestAssignNearestFallsBackToLeastBusy(t *testing.T) {
	m := NewManager(nil)
	busier := &fakeRobot{id: "R1", pos: model.Position{X: 1, Y: 1}, state: model.RobotMoving, queueLen: 2}
	lessBusy := &fakeRobot{id: "R2", pos: model.Position{X: 19, Y: 14}, state: model.RobotWorking, queueLen: 1}
	task := &model.Task{ID: "t", Type: model.TaskPickup, Location: model.Position{X: 1, Y: 1}}

	got := m.AssignNearest(task, []Robot{busier, lessBusy})
	if got == nil || got.ID() != "R2" {
		t.Fatalf("expected least busy R2, got %v", got)
	}
}

func TestAssignNearestExhausted(t *testing.T) {
	m := NewManager(nil)
	full := &fakeRobot{id: "R1", pos: model.Position{X: 1, Y: 1}, state: model.RobotMoving, queueLen: 3}
	task := &model.Task{ID: "t", Type: model.TaskPickup, Location: model.Position{X: 5, Y: 5}}

	if got := m.AssignNearest(task, []Robot{full}); got != nil {
		t.Fatalf("expected exhaustion, got %v", got.ID())
	}
}

func TestApplyExternalValidates(t *testing.T) {
	m := NewManager(nil)
	r1 := &fakeRobot{id: "R1", pos: model.Position{X: 1, Y: 1}, state: model.RobotIdle, available: true}
	inBounds := grid.New().InBounds

	assignments := []model.Assignment{
		{RobotID: "R1", TaskType: model.TaskClean, Priority: 4, Target: model.Position{X: 5, Y: 5}},
		{RobotID: "R9", TaskType: model.TaskClean, Priority: 4, Target: model.Position{X: 5, Y: 5}},
		{RobotID: "R1", TaskType: model.TaskClean, Priority: 4, Target: model.Position{X: 99, Y: 99}},
	}
	applied := m.ApplyExternal(assignments, []Robot{r1}, inBounds)
	if applied != 1 {
		t.Fatalf("expected 1 applied, got %d", applied)
	}
	if len(r1.assigned) != 1 {
		t.Fatalf("expected one task on R1, got %d", len(r1.assigned))
	}
}

func TestApplyExternalQueueFull(t *testing.T) {
	m := NewManager(nil)
	r1 := &fakeRobot{id: "R1", pos: model.Position{X: 1, Y: 1}, denied: true}
	assignments := []model.Assignment{
		{RobotID: "R1", TaskType: model.TaskClean, Priority: 4, Target: model.Position{X: 5, Y: 5}},
	}
	if applied := m.ApplyExternal(assignments, []Robot{r1}, nil); applied != 0 {
		t.Fatalf("expected 0 applied, got %d", applied)
	}
}

func TestCompletionMetrics(t *testing.T) {
	m := NewManager(nil)
	created := time.Now().Add(-2 * time.Second)
	m.RecordCompletion(&model.Task{ID: "a", Type: model.TaskPickup, CreatedAt: created}, created.Add(time.Second))
	m.RecordCompletion(&model.Task{ID: "b", Type: model.TaskClean, CreatedAt: created}, created.Add(3*time.Second))

	if m.CompletedCount() != 2 {
		t.Fatalf("expected 2 completions, got %d", m.CompletedCount())
	}
	if avg := m.AvgResponseTime(); avg != 2000 {
		t.Fatalf("expected avg 2000ms, got %.1f", avg)
	}
	dist := m.TypeDistribution()
	if dist[model.TaskPickup] != 1 || dist[model.TaskClean] != 1 {
		t.Fatalf("unexpected distribution: %v", dist)
	}
}

func TestRestoreSeedsAggregates(t *testing.T) {
	m := NewManager(nil)
	m.Restore(model.FleetMetrics{
		TasksCompleted: 5,
		AvgResponseMs:  1000,
		TypeDistribution: map[model.TaskType]int{
			model.TaskPickup: 5,
		},
	})
	if m.CompletedCount() != 5 {
		t.Fatalf("expected restored count 5, got %d", m.CompletedCount())
	}
	if m.AvgResponseTime() != 1000 {
		t.Fatalf("expected restored avg 1000, got %.1f", m.AvgResponseTime())
	}

	created := time.Now().Add(-time.Second)
	m.RecordCompletion(&model.Task{ID: "c", Type: model.TaskClean, CreatedAt: created}, created.Add(4*time.Second))
	if m.CompletedCount() != 6 {
		t.Fatalf("expected count 6 after new completion, got %d", m.CompletedCount())
	}
	if avg := m.AvgResponseTime(); avg != 1500 {
		t.Fatalf("expected weighted avg 1500, got %.1f", avg)
	}
	if dist := m.TypeDistribution(); dist[model.TaskPickup] != 5 || dist[model.TaskClean] != 1 {
		t.Fatalf("unexpected distribution after restore: %v", dist)
	}
}

func TestEfficiency(t *testing.T) {
	m := NewManager(nil)
	robots := []Robot{
		&fakeRobot{id: "R1", state: model.RobotMoving},
		&fakeRobot{id: "R2", state: model.RobotWorking},
		&fakeRobot{id: "R3", state: model.RobotIdle},
		&fakeRobot{id: "R4", state: model.RobotCharging},
	}
	if eff := m.Efficiency(robots); eff != 50 {
		t.Fatalf("expected 50%%, got %.1f", eff)
	}
}

func TestUtilization(t *testing.T) {
	m := NewManager(nil)
	util := m.Utilization([]Robot{
		&fakeRobot{id: "R1", state: model.RobotMoving},
		&fakeRobot{id: "R2", state: model.RobotIdle, queueLen: 2},
		&fakeRobot{id: "R3", state: model.RobotIdle},
	})
	if util["R1"] != 100 || util["R2"] != 50 || util["R3"] != 0 {
		t.Fatalf("unexpected utilization: %v", util)
	}
}
