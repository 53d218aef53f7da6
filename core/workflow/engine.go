// Package workflow evaluates the user-editable rule graph: trigger nodes
// match incoming events, condition nodes branch on fleet state, action and
// AI-decision nodes emit an ordered action list that is then executed
// against the fleet.
package workflow

import (
	"fmt"

	"github.com/warebots/fleetsim/core/grid"
	"github.com/warebots/fleetsim/core/logger"
	"github.com/warebots/fleetsim/core/model"
)

// Robot is the capability surface workflow actions operate on.
type Robot interface {
	ID() model.RobotID
	Position() model.Position
	State() model.RobotState
	Battery() float64
	QueueLen() int
	CurrentTask() model.TaskType
	NavigateTo(target model.Position, blocked ...model.Position)
	Pause()
	Resume()
	ForceRecharge()
}

// Action is one entry of the ordered list produced by an evaluation.
type Action struct {
	Kind        ActionKind
	Name        string // raw configured name, kept for unknown actions
	TriggeredBy string // node ID
}

// Engine holds the current rule graph. Nodes are kept in an arena keyed by
// stable ID; traversal state is scoped to each Evaluate call so evaluations
// never share mutable state.
type Engine struct {
	nodes map[string]Node
	order []string
	edges []Edge
	log   logger.Logger
}

// NewEngine creates an engine with an empty graph.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{nodes: make(map[string]Node), log: log}
}

// Update replaces the rule graph.
func (e *Engine) Update(nodes []Node, edges []Edge) {
	e.nodes = make(map[string]Node, len(nodes))
	e.order = e.order[:0]
	for _, n := range nodes {
		e.nodes[n.ID] = n
		e.order = append(e.order, n.ID)
	}
	e.edges = append([]Edge(nil), edges...)
	e.log.Infof("workflow updated: %d nodes, %d edges", len(nodes), len(edges))
}

// NodeCount returns the number of graph nodes.
func (e *Engine) NodeCount() int { return len(e.nodes) }

// EdgeCount returns the number of graph edges.
func (e *Engine) EdgeCount() int { return len(e.edges) }

// Evaluate matches the event against trigger nodes and traverses the graph
// depth-first, collecting the ordered action list. Each node is visited at
// most once per evaluation, making cyclic graphs safe.
func (e *Engine) Evaluate(ev model.Event, robots []Robot) []Action {
	var actions []Action
	visited := make(map[string]struct{})
	for _, id := range e.order {
		n := e.nodes[id]
		if n.Kind == NodeTrigger && n.EventType == ev.Type {
			visited[n.ID] = struct{}{}
			e.followEdges(n.ID, ev, robots, &actions, visited)
		}
	}
	return actions
}

func (e *Engine) followEdges(nodeID string, ev model.Event, robots []Robot, actions *[]Action, visited map[string]struct{}) {
	for _, edge := range e.edges {
		if edge.Source != nodeID {
			continue
		}
		target, ok := e.nodes[edge.Target]
		if !ok {
			continue
		}
		if target.Kind == NodeCondition {
			e.branchCondition(target, ev, robots, actions, visited)
		} else {
			e.processNode(target, ev, robots, actions, visited)
		}
	}
}

// branchCondition evaluates a condition node and follows only the matching
// branch. Edges without an explicit handle count as the "yes" branch.
func (e *Engine) branchCondition(n Node, ev model.Event, robots []Robot, actions *[]Action, visited map[string]struct{}) {
	if _, ok := visited[n.ID]; ok {
		return
	}
	visited[n.ID] = struct{}{}
	result := evalCondition(n.Condition, ev, robots)
	handle := HandleNo
	if result {
		handle = HandleYes
	}
	for _, edge := range e.edges {
		if edge.Source != n.ID {
			continue
		}
		if edge.Handle != handle && !(edge.Handle == "" && result) {
			continue
		}
		if next, ok := e.nodes[edge.Target]; ok {
			e.processNode(next, ev, robots, actions, visited)
		}
	}
}

// processNode appends the node's action and expands its outgoing edges.
// Each node contributes at most once per evaluation, so cyclic graphs
// terminate.
func (e *Engine) processNode(n Node, ev model.Event, robots []Robot, actions *[]Action, visited map[string]struct{}) {
	if n.Kind == NodeCondition {
		// Reached directly from another condition's branch.
		e.branchCondition(n, ev, robots, actions, visited)
		return
	}
	if _, ok := visited[n.ID]; ok {
		return
	}
	visited[n.ID] = struct{}{}
	switch n.Kind {
	case NodeAction:
		*actions = append(*actions, Action{Kind: n.Action, Name: n.RawAction, TriggeredBy: n.ID})
		e.followEdges(n.ID, ev, robots, actions, visited)
	case NodeAIDecision:
		*actions = append(*actions, Action{Kind: ActionAskAI, Name: string(ActionAskAI), TriggeredBy: n.ID})
		e.followEdges(n.ID, ev, robots, actions, visited)
	}
}

// evalCondition runs a named predicate against event and fleet state.
// Unknown conditions evaluate true, failing open.
func evalCondition(c Condition, ev model.Event, robots []Robot) bool {
	switch c {
	case CondPriorityAboveThree:
		return ev.Priority > 3
	case CondIdleBatteryAbove20:
		for _, r := range robots {
			if r.State() == model.RobotIdle && r.Battery() > 20 {
				return true
			}
		}
		return false
	case CondHasIdleRobot:
		for _, r := range robots {
			if r.State() == model.RobotIdle {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Execute interprets the action list against the fleet and returns textual
// results. Unknown actions produce a descriptive no-op result rather than
// failing the evaluation.
func (e *Engine) Execute(actions []Action, ev model.Event, robots []Robot) []string {
	var results []string
	for _, a := range actions {
		switch a.Kind {
		case ActionDispatchNearest:
			if nearest := nearestIdle(robots, ev.Location); nearest != nil {
				nearest.NavigateTo(ev.Location)
				results = append(results, fmt.Sprintf("Workflow: %s dispatched to (%d, %d)", nearest.ID(), ev.Location.X, ev.Location.Y))
			}
		case ActionRechargeAll:
			for _, r := range robots {
				if r.State() != model.RobotCharging && r.CurrentTask() != model.TaskRecharge {
					r.ForceRecharge()
					results = append(results, fmt.Sprintf("Workflow: %s sent to charging station", r.ID()))
				}
			}
		case ActionRecharge:
			if idle := nearestIdle(robots, grid.ChargeZone); idle != nil {
				idle.ForceRecharge()
				results = append(results, fmt.Sprintf("Workflow: %s dispatched to charging zone", idle.ID()))
			}
		case ActionPauseAll:
			for _, r := range robots {
				if r.State() == model.RobotMoving || r.State() == model.RobotWorking {
					r.Pause()
					results = append(results, fmt.Sprintf("Workflow: %s paused", r.ID()))
				}
			}
		case ActionResumeAll:
			for _, r := range robots {
				if r.State() == model.RobotPaused {
					r.Resume()
					results = append(results, fmt.Sprintf("Workflow: %s resumed", r.ID()))
				}
			}
		case ActionQueueTask:
			results = append(results, fmt.Sprintf("Workflow: Task queued for event at (%d, %d)", ev.Location.X, ev.Location.Y))
		case ActionAskAI:
			results = append(results, "Workflow: AI analysis requested")
		case ActionLogAlert:
			results = append(results, fmt.Sprintf("Workflow: Alert logged, %s at (%d, %d)", ev.Type, ev.Location.X, ev.Location.Y))
		default:
			results = append(results, fmt.Sprintf("Workflow: Unknown action %q", a.Name))
		}
	}
	return results
}

// NeedsAI reports whether any action in the list requests external
// reasoning.
func NeedsAI(actions []Action) bool {
	for _, a := range actions {
		if a.Kind == ActionAskAI {
			return true
		}
	}
	return false
}

// nearestIdle returns the idle robot closest to target that has usable
// battery and queue headroom, or nil.
func nearestIdle(robots []Robot, target model.Position) Robot {
	var best Robot
	bestDist := 0
	for _, r := range robots {
		if r.State() != model.RobotIdle || r.Battery() <= 15 || r.QueueLen() >= 3 {
			continue
		}
		d := r.Position().Manhattan(target)
		if best == nil || d < bestDist {
			best = r
			bestDist = d
		}
	}
	return best
}
