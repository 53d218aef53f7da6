package workflow

import "github.com/warebots/fleetsim/core/model"

// NodeKind is the closed set of rule-graph node kinds.
type NodeKind string

const (
	NodeTrigger    NodeKind = "triggerNode"
	NodeCondition  NodeKind = "conditionNode"
	NodeAction     NodeKind = "actionNode"
	NodeAIDecision NodeKind = "aiDecisionNode"
	NodeUnknown    NodeKind = "unknownNode"
)

// Condition names a predicate evaluated against event and fleet state.
type Condition string

const (
	CondPriorityAboveThree Condition = "priority_gt_3"
	CondIdleBatteryAbove20 Condition = "battery_above_20"
	CondHasIdleRobot       Condition = "has_idle_robot"
	// CondUnknown marks unrecognized predicates; they evaluate true.
	CondUnknown Condition = "unknown"
)

// ActionKind is the closed set of executable workflow actions.
type ActionKind string

const (
	ActionDispatchNearest ActionKind = "dispatch_nearest"
	ActionRechargeAll     ActionKind = "recharge_all"
	ActionRecharge        ActionKind = "recharge"
	ActionPauseAll        ActionKind = "pause_all"
	ActionResumeAll       ActionKind = "resume_all"
	ActionQueueTask       ActionKind = "queue_task"
	ActionAskAI           ActionKind = "ask_ai"
	ActionLogAlert        ActionKind = "log_alert"
	ActionUnknown         ActionKind = "unknown"
)

// Edge handles on a condition node's outgoing edges.
const (
	HandleYes = "yes"
	HandleNo  = "no"
)

// Node is one rule-graph node. Only the field matching Kind is meaningful:
// EventType for triggers, Condition for conditions, Action for actions.
type Node struct {
	ID        string
	Kind      NodeKind
	EventType model.EventType
	Condition Condition
	Action    ActionKind
	RawAction string
}

// Edge is a directed connection between two nodes. Handle carries the
// condition branch label; empty means the "yes" branch.
type Edge struct {
	ID     string
	Source string
	Target string
	Handle string
}

// NodeFromConfig builds a Node from the externally supplied node shape
// (id, type string, free-form data map), normalizing legacy aliases and
// mapping anything unrecognized to the explicit unknown variants.
func NodeFromConfig(id, nodeType string, data map[string]string) Node {
	n := Node{ID: id, Kind: parseNodeKind(nodeType)}
	switch n.Kind {
	case NodeTrigger:
		n.EventType = model.EventType(data["eventType"])
	case NodeCondition:
		n.Condition = parseCondition(data["condition"])
	case NodeAction:
		n.RawAction = data["action"]
		n.Action = parseAction(data["action"])
	}
	return n
}

func parseNodeKind(s string) NodeKind {
	switch NodeKind(s) {
	case NodeTrigger, NodeCondition, NodeAction, NodeAIDecision:
		return NodeKind(s)
	default:
		return NodeUnknown
	}
}

func parseCondition(s string) Condition {
	switch s {
	case "priority_gt_3", "priority > 3":
		return CondPriorityAboveThree
	case "battery_above_20":
		return CondIdleBatteryAbove20
	case "has_idle_robot", "zone_has_idle":
		return CondHasIdleRobot
	default:
		return CondUnknown
	}
}

func parseAction(s string) ActionKind {
	switch s {
	case "dispatch_nearest":
		return ActionDispatchNearest
	case "recharge_all":
		return ActionRechargeAll
	case "recharge":
		return ActionRecharge
	case "pause_all", "pause_zone":
		return ActionPauseAll
	case "resume_all":
		return ActionResumeAll
	case "queue_task":
		return ActionQueueTask
	case "ask_ai", "execute_ai":
		return ActionAskAI
	case "log_alert":
		return ActionLogAlert
	default:
		return ActionUnknown
	}
}
