package events

import "fmt"

// Event names.
const (
	PuzzleActivated   = "puzzle.activated"
	PuzzleDeactivated = "puzzle.deactivated"
	PuzzleLoadFailed  = "puzzle.load_failed"

	ComputeRequested = "compute.requested"
	ComputeCompleted = "compute.completed"
	ComputeFailed    = "compute.failed"

	AnswerChecked = "answer.checked"

	ProgressUpdated       = "progress.updated"
	ProgressPersistFailed = "progress.persist_failed"

	ProtocolViolation = "protocol.violation"

	OperatorSelect = "operator.select"

	SystemStartup  = "system.startup"
	SystemShutdown = "system.shutdown"
	SystemError    = "system.error"
)

// Levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var allowedEvents = map[string]struct{}{
	// puzzle
	PuzzleActivated:   {},
	PuzzleDeactivated: {},
	PuzzleLoadFailed:  {},

	// compute
	ComputeRequested: {},
	ComputeCompleted: {},
	ComputeFailed:    {},

	// ledger
	AnswerChecked: {},

	// progress
	ProgressUpdated:       {},
	ProgressPersistFailed: {},

	// protocol
	ProtocolViolation: {},

	// operator
	OperatorSelect: {},

	// system
	SystemStartup:  {},
	SystemShutdown: {},
	SystemError:    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
