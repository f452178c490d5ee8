package orchestrator

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/ledger"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
	"github.com/AaronLay10/AdventEngine/internal/storage/postgres"
)

// DefaultRestoreLimit is the default number of events to load for restore.
const DefaultRestoreLimit = 1000

// EventSource returns the most recent persisted events, newest first.
// The postgres client satisfies it.
type EventSource interface {
	Query(limit int) ([]postgres.EventRow, error)
}

// RestoredState is the lifecycle reconstructed from the event log.
type RestoredState struct {
	Active    bool
	ID        puzzle.ID
	SessionID string
	// Outcomes holds the last verification outcome per (day, part).
	Outcomes map[ledger.Key]puzzle.Outcome
}

// RestoreFromEvents replays persisted events to find the last activation
// and the latest outcome per (day, part). It returns nil if src is nil or
// the log is empty, along with the number of events replayed.
func RestoreFromEvents(src EventSource, limit int) (*RestoredState, int, error) {
	if src == nil {
		return nil, 0, nil
	}

	if limit <= 0 {
		limit = DefaultRestoreLimit
	}

	rows, err := src.Query(limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}

	if len(rows) == 0 {
		return nil, 0, nil
	}

	// Reverse to chronological order (Query returns DESC)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	state := &RestoredState{
		Outcomes: make(map[ledger.Key]puzzle.Outcome),
	}

	for _, row := range rows {
		switch row.Event {
		case events.PuzzleActivated:
			id, ok := fieldDay(row.Fields)
			if !ok {
				continue
			}
			state.Active = true
			state.ID = id
			state.SessionID, _ = row.Fields["session_id"].(string)

		case events.PuzzleDeactivated, events.PuzzleLoadFailed:
			state.Active = false
			state.ID = puzzle.None
			state.SessionID = ""

		case events.AnswerChecked:
			id, ok := fieldDay(row.Fields)
			if !ok {
				continue
			}
			part, ok := fieldInt(row.Fields, "part")
			if !ok || !puzzle.Part(part).Valid() {
				continue
			}
			outcome, _ := row.Fields["outcome"].(string)
			state.Outcomes[ledger.Key{ID: id, Part: puzzle.Part(part)}] = puzzle.ParseOutcome(outcome)
		}
	}

	return state, len(rows), nil
}

func fieldDay(fields map[string]interface{}) (puzzle.ID, bool) {
	n, ok := fieldInt(fields, "day")
	if !ok || n < 1 || n > puzzle.Count {
		return puzzle.None, false
	}
	return puzzle.ID(n), true
}

// fieldInt reads an integer field. JSON decoding yields float64.
func fieldInt(fields map[string]interface{}, key string) (int, bool) {
	switch v := fields[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// ApplyRestoredState re-selects the day that was active when the process
// last stopped. The activation gets a fresh session; the earlier session's
// submissions are not replayed.
func (r *Runtime) ApplyRestoredState(ctx context.Context, state *RestoredState) error {
	if state == nil || !state.Active {
		return nil
	}
	return r.SelectPuzzle(ctx, state.ID)
}

// EmitStartupRestore emits system.startup with the restore summary.
func (r *Runtime) EmitStartupRestore(restored int, state *RestoredState) {
	fields := map[string]interface{}{
		"restored": restored,
	}
	if state != nil && state.Active {
		fields["resumed_day"] = int(state.ID)
	}
	if state != nil && len(state.Outcomes) > 0 {
		fields["last_outcomes"] = outcomeFields(state.Outcomes)
	}
	r.emit(events.LevelInfo, events.SystemStartup, "", fields)
}

// outcomeFields lists restored outcomes ordered by day, then part.
func outcomeFields(outcomes map[ledger.Key]puzzle.Outcome) []map[string]interface{} {
	keys := slices.SortedFunc(maps.Keys(outcomes), func(a, b ledger.Key) int {
		if a.ID != b.ID {
			return cmp.Compare(a.ID, b.ID)
		}
		return cmp.Compare(a.Part, b.Part)
	})

	out := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]interface{}{
			"day":     int(k.ID),
			"part":    int(k.Part),
			"outcome": outcomes[k].String(),
		})
	}
	return out
}
