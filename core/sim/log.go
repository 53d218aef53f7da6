package sim

import (
	"github.com/google/uuid"

	"github.com/warebots/fleetsim/core/model"
)

const (
	// logTrimAt and logTrimTo bound the in-memory event log: once it
	// grows past logTrimAt the oldest entries are dropped down to
	// logTrimTo.
	logTrimAt = 200
	logTrimTo = 100
)

const (
	colorBlue   = "#00d4ff"
	colorOrange = "#ff6b35"
	colorYellow = "#ffcc00"
	colorPurple = "#a855f7"
	colorGreen  = "#00ff88"
	colorRed    = "#ff4444"
)

// addLog appends to the bounded operational log. Callers hold the engine
// mutex.
func (e *Engine) addLog(category, message, color string) {
	e.logs = append(e.logs, model.LogEntry{
		ID:        uuid.NewString(),
		Category:  category,
		Message:   message,
		Timestamp: e.now(),
		Color:     color,
	})
	if len(e.logs) > logTrimAt {
		e.logs = e.logs[len(e.logs)-logTrimTo:]
	}
	e.log.Debugf("[%s] %s", category, message)
}

// Logs returns the newest limit entries, oldest first. limit <= 0 returns
// everything retained.
func (e *Engine) Logs(limit int) []model.LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	logs := e.logs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return append([]model.LogEntry(nil), logs...)
}

func eventColor(t model.EventType) string {
	switch t {
	case model.EventPackageDrop:
		return colorBlue
	case model.EventSpill:
		return colorOrange
	case model.EventHumanEntry:
		return colorRed
	case model.EventBatteryLow:
		return colorYellow
	case model.EventCongestion:
		return colorPurple
	default:
		return colorBlue
	}
}
