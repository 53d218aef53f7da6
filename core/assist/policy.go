// Package assist builds reasoning requests from fleet state, enforces the
// debounce window and hard timeout against the external collaborator, and
// substitutes a deterministic nearest-available-robot assignment whenever
// the collaborator is absent, skipped or failing.
package assist

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warebots/fleetsim/core/logger"
	"github.com/warebots/fleetsim/core/model"
)

// Reasoner is the external reasoning collaborator. Implementations must
// honor the context deadline.
type Reasoner interface {
	Decide(ctx context.Context, state model.AssistState, ev model.Event) (model.AssistResponse, error)
}

// Config tunes the policy.
type Config struct {
	// DebounceMs is the minimum spacing between external calls.
	DebounceMs int `json:"debounce_ms"`
	// TimeoutSeconds bounds each external call.
	TimeoutSeconds int `json:"timeout_seconds"`
	// Endpoint of the external reasoning service; empty disables it.
	Endpoint string `json:"endpoint"`
	// APIKey authenticates against the reasoning service.
	APIKey string `json:"api_key"`
	// Model names the reasoning model to use.
	Model string `json:"model"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DebounceMs == 0 {
		c.DebounceMs = 1500
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Model == "" {
		c.Model = "gemini-3-flash-preview"
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	return nil
}

// Policy gates access to the external reasoner. State is per instance, so
// multiple simulations can coexist in tests.
type Policy struct {
	reasoner Reasoner
	debounce time.Duration
	timeout  time.Duration
	log      logger.Logger

	mu       sync.Mutex
	lastCall time.Time
	now      func() time.Time
}

// NewPolicy creates a policy. reasoner may be nil, in which case every
// decision uses the deterministic fallback.
func NewPolicy(reasoner Reasoner, cfg Config, log logger.Logger) *Policy {
	if log == nil {
		log = logger.Nop{}
	}
	return &Policy{
		reasoner: reasoner,
		debounce: time.Duration(cfg.DebounceMs) * time.Millisecond,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:      log,
		now:      time.Now,
	}
}

// Decide produces an assignment decision for the event. The external
// collaborator is consulted unless the policy was invoked within the
// debounce window or no collaborator is configured; any transport, parse
// or timeout failure degrades to the deterministic fallback. The returned
// response is flagged so observers can tell AI-sourced decisions from
// deterministic ones.
func (p *Policy) Decide(ctx context.Context, state model.AssistState, ev model.Event) model.AssistResponse {
	p.mu.Lock()
	now := p.now()
	if now.Sub(p.lastCall) < p.debounce {
		p.mu.Unlock()
		assistSkipped.Inc()
		p.log.Debugf("assist debounced for %s event", ev.Type)
		return Fallback(state, ev.Type, ev.Location)
	}
	p.lastCall = now
	p.mu.Unlock()

	if p.reasoner == nil {
		assistFallback.Inc()
		return Fallback(state, ev.Type, ev.Location)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		resp model.AssistResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := p.reasoner.Decide(callCtx, state, ev)
		done <- result{resp, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			assistFallback.Inc()
			p.log.Warnf("reasoner failed: %v", res.err)
			fb := Fallback(state, ev.Type, ev.Location)
			fb.Reasoning = fmt.Sprintf("AI unavailable, using fallback logic: %v", res.err)
			return fb
		}
		assistDecisions.Inc()
		res.resp.Fallback = false
		return res.resp
	case <-callCtx.Done():
		// The abandoned call's eventual response drains into the buffered
		// channel and is never read.
		assistFallback.Inc()
		p.log.Warnf("reasoner timed out after %s", p.timeout)
		fb := Fallback(state, ev.Type, ev.Location)
		fb.Reasoning = "AI unavailable, using fallback logic: timeout"
		return fb
	}
}

// Fallback computes the deterministic assignment: the nearest idle or
// charging robot with battery above 20 and queue headroom. The response is
// always flagged as a fallback.
func Fallback(state model.AssistState, evType model.EventType, loc model.Position) model.AssistResponse {
	taskType := model.TaskTypeFor(evType)

	candidates := make([]model.AssistRobot, 0, len(state.Robots))
	for _, r := range state.Robots {
		if (r.State == model.RobotIdle || r.State == model.RobotCharging) && r.Battery > 20 && r.QueueLength < 3 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position.Manhattan(loc) < candidates[j].Position.Manhattan(loc)
	})

	if len(candidates) == 0 {
		return model.AssistResponse{
			Reasoning:   "No available robots. All robots are busy or have low battery. Task queued.",
			Assignments: []model.Assignment{},
			Alerts:      []string{"All robots occupied, task may be delayed"},
			Fallback:    true,
		}
	}

	chosen := candidates[0]
	priority := 3
	if evType == model.EventHumanEntry {
		priority = 5
	}
	return model.AssistResponse{
		Reasoning: fmt.Sprintf("Fallback logic: assigned nearest available robot %s (distance: %d tiles, battery: %.0f%%)",
			chosen.ID, chosen.Position.Manhattan(loc), chosen.Battery),
		Assignments: []model.Assignment{{
			RobotID:  chosen.ID,
			TaskType: taskType,
			Priority: priority,
			Target:   loc,
			Reason:   "Nearest available robot with sufficient battery",
		}},
		Alerts:   []string{},
		Fallback: true,
	}
}
