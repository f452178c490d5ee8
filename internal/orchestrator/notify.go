package orchestrator

import (
	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/metrics"
	"github.com/AaronLay10/AdventEngine/internal/progress"
)

// ProgressNotifier returns a progress.Store notifier that publishes every
// completion change on bus and keeps the stars gauge current.
func ProgressNotifier(bus *events.Bus, m *metrics.Metrics) func(progress.Change) {
	return func(c progress.Change) {
		m.SetStars(c.Record.Stars())
		if bus == nil {
			return
		}
		_, _ = bus.Emit(events.LevelInfo, events.ProgressUpdated, "", map[string]interface{}{
			"day":   int(c.ID),
			"part":  int(c.Part),
			"stars": c.Record.Stars(),
		})
	}
}
