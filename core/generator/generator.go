// Package generator produces randomized warehouse incidents on jittered
// per-type intervals, on-demand manual incidents and the scripted
// human-worker walk.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/warebots/fleetsim/core/grid"
	"github.com/warebots/fleetsim/core/model"
)

// timing is an independent renewal process for one event type: after
// firing, the next interval is redrawn uniformly from [min, max].
type timing struct {
	min, max time.Duration
	waited   time.Duration
	next     time.Duration
}

// Generator emits stochastic events against a grid. It is owned by the
// simulation engine and advanced once per tick.
type Generator struct {
	grid *grid.Grid
	rng  *rand.Rand

	timings map[model.EventType]*timing
	order   []model.EventType
}

// New creates a generator. seed fixes the random stream for tests; pass 0
// to derive one from the clock.
func New(g *grid.Grid, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := &Generator{
		grid:    g,
		rng:     rand.New(rand.NewSource(seed)),
		timings: make(map[model.EventType]*timing),
	}
	gen.addTiming(model.EventPackageDrop, 20*time.Second, 40*time.Second)
	gen.addTiming(model.EventSpill, 60*time.Second, 90*time.Second)
	gen.addTiming(model.EventHumanEntry, 30*time.Second, 50*time.Second)
	return gen
}

func (g *Generator) addTiming(t model.EventType, min, max time.Duration) {
	g.timings[t] = &timing{min: min, max: max, next: g.randomBetween(min, max)}
	g.order = append(g.order, t)
}

// Tick advances the renewal processes by the elapsed tick time scaled by
// the speed multiplier and returns any events that fired.
func (g *Generator) Tick(elapsed time.Duration, speed float64) []model.Event {
	var events []model.Event
	scaled := time.Duration(float64(elapsed) * speed)
	for _, typ := range g.order {
		tm := g.timings[typ]
		tm.waited += scaled
		if tm.waited < tm.next {
			continue
		}
		if ev, ok := g.generate(typ); ok {
			events = append(events, ev)
		}
		tm.waited = 0
		tm.next = g.randomBetween(tm.min, tm.max)
	}
	return events
}

func (g *Generator) generate(typ model.EventType) (model.Event, bool) {
	loc, ok := g.randomWalkable()
	if !ok {
		return model.Event{}, false
	}
	return model.Event{
		ID:          uuid.NewString(),
		Type:        typ,
		Location:    loc,
		Priority:    model.EventPriority(typ),
		Timestamp:   time.Now(),
		Description: describe(typ, loc, false),
		Resolved:    false,
	}, true
}

// Manual creates an on-demand event. When loc is nil a random walkable
// tile is used, with a hardcoded fallback for fully blocked grids.
func (g *Generator) Manual(typ model.EventType, loc *model.Position) model.Event {
	pos := model.Position{X: 10, Y: 7}
	if loc != nil {
		pos = *loc
	} else if p, ok := g.randomWalkable(); ok {
		pos = p
	}
	return model.Event{
		ID:          uuid.NewString(),
		Type:        typ,
		Location:    pos,
		Priority:    model.EventPriority(typ),
		Timestamp:   time.Now(),
		Description: describe(typ, pos, true),
		Resolved:    false,
	}
}

// HumanWorker scripts a horizontal walk across the pickup zone: six tiles
// of a random row, skipping obstacle cells. A hardcoded safe position is
// used when the whole row is blocked.
func (g *Generator) HumanWorker() *model.HumanWorker {
	row := 10 + g.rng.Intn(5)
	var path []model.Position
	for x := 0; x <= 5; x++ {
		p := model.Position{X: x, Y: row}
		if g.grid.IsWalkable(p) {
			path = append(path, p)
		}
	}
	if len(path) == 0 {
		path = []model.Position{{X: 2, Y: 12}}
	}
	return &model.HumanWorker{
		Position:  path[0],
		Path:      path,
		PathIndex: 0,
		Active:    true,
	}
}

func (g *Generator) randomWalkable() (model.Position, bool) {
	walkable := g.grid.Walkable()
	if len(walkable) == 0 {
		return model.Position{}, false
	}
	return walkable[g.rng.Intn(len(walkable))], true
}

func (g *Generator) randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(g.rng.Int63n(int64(max-min)))
}

func describe(typ model.EventType, loc model.Position, manual bool) string {
	var msg string
	switch typ {
	case model.EventPackageDrop:
		msg = fmt.Sprintf("Package detected at (%d, %d)", loc.X, loc.Y)
	case model.EventSpill:
		msg = fmt.Sprintf("Spill reported at (%d, %d)", loc.X, loc.Y)
	case model.EventHumanEntry:
		msg = fmt.Sprintf("Human worker entered zone near (%d, %d)", loc.X, loc.Y)
	case model.EventCongestion:
		msg = fmt.Sprintf("Congestion detected near (%d, %d)", loc.X, loc.Y)
	case model.EventBatteryLow:
		msg = "Low battery alert"
	default:
		msg = fmt.Sprintf("Incident at (%d, %d)", loc.X, loc.Y)
	}
	if manual {
		return "Manual: " + msg
	}
	return msg
}
