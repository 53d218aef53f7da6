package assist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warebots/fleetsim/core/model"
)

// BuildPrompt renders the coordinator prompt for one event against the
// current fleet snapshot. Robots are listed closest first so the model's
// first pick is usually the right one.
func BuildPrompt(state model.AssistState, ev model.Event) string {
	required := model.TaskTypeFor(ev.Type)
	priority := model.EventPriority(ev.Type)

	robots := append([]model.AssistRobot(nil), state.Robots...)
	sort.SliceStable(robots, func(i, j int) bool {
		return robots[i].Position.Manhattan(ev.Location) < robots[j].Position.Manhattan(ev.Location)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "You are the coordinator for a 20x15 warehouse with %d robots.\n\n", len(robots))
	fmt.Fprintf(&b, "EVENT: %s at (%d, %d)\n", ev.Type, ev.Location.X, ev.Location.Y)
	fmt.Fprintf(&b, "REQUIRED TASK: %s\n\n", required)
	b.WriteString("ROBOTS (sorted closest to farthest):\n")
	for _, r := range robots {
		task := "none"
		if r.CurrentTask != "" {
			task = string(r.CurrentTask)
		}
		fmt.Fprintf(&b, "  %s: pos=(%d,%d) distance=%d state=%s battery=%.0f%% currentTask=%s queueLength=%d\n",
			r.ID, r.Position.X, r.Position.Y, r.Position.Manhattan(ev.Location), r.State, r.Battery, task, r.QueueLength)
	}
	if state.HumanWorker != nil {
		fmt.Fprintf(&b, "\nHUMAN WORKER at (%d, %d), nearby robots must yield.\n", state.HumanWorker.X, state.HumanWorker.Y)
	}
	b.WriteString("\nASSIGNMENT RULES:\n")
	b.WriteString("1. Pick EXACTLY ONE robot, the closest IDLE robot with battery > 20%.\n")
	b.WriteString("2. If no IDLE robot qualifies, pick the closest with queueLength < 3.\n")
	b.WriteString("3. Never pick a robot with battery < 15%.\n")
	fmt.Fprintf(&b, "4. taskType must be %q, targetLocation must be {\"x\":%d,\"y\":%d}, priority must be %d.\n\n",
		required, ev.Location.X, ev.Location.Y, priority)
	b.WriteString("OUTPUT: Respond with ONLY raw JSON, no markdown fences, no extra text.\n")
	fmt.Fprintf(&b, `{"reasoning":"<1 sentence>","assignments":[{"robotId":"<ID>","taskType":%q,"priority":%d,"targetLocation":{"x":%d,"y":%d},"reason":"<short>"}],"alerts":[]}`,
		required, priority, ev.Location.X, ev.Location.Y)
	return b.String()
}

// StripFences removes markdown code fences some models wrap around their
// JSON output.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
