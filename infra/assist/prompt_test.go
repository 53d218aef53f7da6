package assist

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/warebots/fleetsim/core/model"
)

func testState() model.AssistState {
	return model.AssistState{
		Robots: []model.AssistRobot{
			{ID: "R1", Position: model.Position{X: 2, Y: 2}, State: model.RobotIdle, Battery: 100},
			{ID: "R3", Position: model.Position{X: 12, Y: 7}, State: model.RobotMoving, Battery: 72, CurrentTask: model.TaskClean, QueueLength: 1},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	ev := model.Event{Type: model.EventPackageDrop, Location: model.Position{X: 10, Y: 7}, Priority: 3}
	prompt := BuildPrompt(testState(), ev)

	for _, want := range []string{
		"PACKAGE_DROP at (10, 7)",
		"REQUIRED TASK: PICKUP",
		"R3: pos=(12,7) distance=2",
		"battery=72%",
		"currentTask=CLEAN",
		"ONLY raw JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// The closest robot must be listed first.
	if strings.Index(prompt, "R3:") > strings.Index(prompt, "R1:") {
		t.Errorf("robots not sorted closest first")
	}
	if strings.Contains(prompt, "HUMAN WORKER") {
		t.Errorf("prompt mentions absent human worker")
	}
}

func TestBuildPromptHumanWorker(t *testing.T) {
	state := testState()
	state.HumanWorker = &model.Position{X: 3, Y: 12}
	ev := model.Event{Type: model.EventSpill, Location: model.Position{X: 5, Y: 5}, Priority: 4}
	prompt := BuildPrompt(state, ev)
	if !strings.Contains(prompt, "HUMAN WORKER at (3, 12)") {
		t.Errorf("prompt missing human worker note")
	}
}

func TestBuildPromptExampleParses(t *testing.T) {
	ev := model.Event{Type: model.EventSpill, Location: model.Position{X: 5, Y: 5}, Priority: 4}
	prompt := BuildPrompt(testState(), ev)

	// The trailing example must itself be valid AssistResponse JSON.
	start := strings.LastIndex(prompt, "{\"reasoning\"")
	if start == -1 {
		t.Fatalf("prompt missing JSON example")
	}
	var resp model.AssistResponse
	if err := json.Unmarshal([]byte(prompt[start:]), &resp); err != nil {
		t.Fatalf("example JSON invalid: %v", err)
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].TaskType != model.TaskClean {
		t.Fatalf("unexpected example shape: %+v", resp)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := StripFences(c.in); got != c.want {
			t.Errorf("StripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
