package model

// HumanWorker is the optional scripted worker crossing the floor. While
// active, robots within the safety radius are paused.
type HumanWorker struct {
	Position  Position   `json:"position"`
	Path      []Position `json:"path"`
	PathIndex int        `json:"pathIndex"`
	Active    bool       `json:"active"`
}
