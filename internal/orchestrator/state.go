package orchestrator

import "github.com/AaronLay10/AdventEngine/internal/puzzle"

// Phase is the lifecycle phase of the runtime.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
)

// State is a snapshot of the lifecycle. Active implies ID is a real day
// whose input was loaded.
type State struct {
	Phase     Phase     `json:"phase"`
	ID        puzzle.ID `json:"day"`
	SessionID string    `json:"session_id,omitempty"`
	Computing bool      `json:"computing"`
	Steps     int       `json:"steps"`
	Submitted []string  `json:"submitted,omitempty"`
}

// IsActive returns true if a puzzle is active.
func (s State) IsActive() bool {
	return s.Phase == PhaseActive
}

// activation holds everything scoped to one successful entry into Active.
// Dropping it releases the raw input and the solver capsule.
type activation struct {
	id        puzzle.ID
	session   string
	raw       string
	task      Task
	steps     int
	submitted [2]bool
}

func (a *activation) state() State {
	s := State{
		Phase:     PhaseActive,
		ID:        a.id,
		SessionID: a.session,
		Computing: a.task != nil,
		Steps:     a.steps,
	}
	for _, p := range puzzle.Parts {
		if a.submitted[p-1] {
			s.Submitted = append(s.Submitted, p.String())
		}
	}
	return s
}
