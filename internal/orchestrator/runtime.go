package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/input"
	"github.com/AaronLay10/AdventEngine/internal/ledger"
	"github.com/AaronLay10/AdventEngine/internal/metrics"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

// DefaultStepHz is the step rate used when none is configured.
const DefaultStepHz = 3

var (
	ErrInvalidPuzzle     = errors.New("invalid puzzle")
	ErrLoadFailed        = errors.New("load failed")
	ErrProtocolViolation = errors.New("protocol violation")
	ErrStepLimit         = errors.New("step limit reached")
)

// Runtime is the puzzle lifecycle state machine. It owns the active
// activation, dispatches compute requests to the registered solver and
// routes submissions through the ledger. All methods are serialized.
type Runtime struct {
	mu sync.Mutex

	provider input.Provider
	registry *Registry
	ledger   *ledger.Ledger
	bus      *events.Bus
	logger   *slog.Logger
	metrics  *metrics.Metrics

	act *activation
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records lifecycle metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// NewRuntime creates an idle runtime.
func NewRuntime(provider input.Provider, registry *Registry, l *ledger.Ledger, bus *events.Bus, opts ...Option) *Runtime {
	r := &Runtime{
		provider: provider,
		registry: registry,
		ledger:   l,
		bus:      bus,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns a snapshot of the lifecycle.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.act == nil {
		return State{Phase: PhaseIdle}
	}
	return r.act.state()
}

// SelectPuzzle transitions the lifecycle. Selecting puzzle.None always
// succeeds and leaves the runtime idle. Selecting a day loads its input;
// on failure the runtime is left idle and the error wraps ErrLoadFailed.
// Re-selecting the active day restarts it with a new session.
func (r *Runtime) SelectPuzzle(ctx context.Context, id puzzle.ID) error {
	if id > puzzle.Count {
		r.metrics.Selection(metrics.SelectionInvalid)
		return fmt.Errorf("select %d: %w", id, ErrInvalidPuzzle)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id == puzzle.None {
		r.exitLocked()
		r.metrics.Selection(metrics.SelectionIdle)
		return nil
	}

	raw, err := r.provider.Load(ctx, id)
	if err != nil {
		r.exitLocked()
		r.metrics.Selection(metrics.SelectionLoadFailed)
		r.emit(events.LevelError, events.PuzzleLoadFailed, "input load failed", map[string]interface{}{
			"day":   int(id),
			"error": err.Error(),
		})
		return fmt.Errorf("select %s: %w: %w", id, ErrLoadFailed, err)
	}

	r.exitLocked()
	r.enterLocked(id, raw)
	return nil
}

func (r *Runtime) enterLocked(id puzzle.ID, raw string) {
	act := &activation{
		id:      id,
		session: uuid.NewString(),
		raw:     raw,
	}
	r.act = act
	r.metrics.Selection(metrics.SelectionActivated)
	r.metrics.SetActive(id)

	r.emit(events.LevelInfo, events.PuzzleActivated, "", map[string]interface{}{
		"day":         int(id),
		"session_id":  act.session,
		"input_bytes": len(raw),
	})
	r.emit(events.LevelInfo, events.ComputeRequested, "", map[string]interface{}{
		"day":        int(id),
		"session_id": act.session,
	})

	solver, ok := r.registry.Lookup(id)
	if !ok {
		r.logger.Warn("no solver registered", slog.Int("day", int(id)))
		return
	}

	task, err := solver.Begin(raw)
	if err != nil {
		r.emit(events.LevelError, events.ComputeFailed, "solver rejected input", map[string]interface{}{
			"day":        int(id),
			"session_id": act.session,
			"error":      err.Error(),
		})
		return
	}
	act.task = task
}

// exitLocked releases the active activation, if any. It always completes
// before the next entry begins.
func (r *Runtime) exitLocked() {
	act := r.act
	if act == nil {
		return
	}
	r.act = nil
	r.metrics.SetActive(puzzle.None)

	r.emit(events.LevelInfo, events.PuzzleDeactivated, "", map[string]interface{}{
		"day":        int(act.id),
		"session_id": act.session,
		"cancelled":  act.task != nil,
	})
}

// Step polls the active capsule once and routes its submissions. It
// reports whether a capsule is still running afterwards.
func (r *Runtime) Step() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	act := r.act
	if act == nil || act.task == nil {
		return false
	}

	subs, done := act.task.Step()
	act.steps++
	r.metrics.Step()

	for _, sub := range subs {
		// Violations and persistence failures are reported as events.
		_, _ = r.submitLocked(act, sub)
	}

	if !done {
		return true
	}

	act.task = nil
	r.emit(events.LevelInfo, events.ComputeCompleted, "", map[string]interface{}{
		"day":        int(act.id),
		"session_id": act.session,
		"steps":      act.steps,
	})
	return false
}

// Settle steps until the active capsule finishes, the context is done or
// maxSteps have run (maxSteps <= 0 means no limit). It returns the number
// of steps taken.
func (r *Runtime) Settle(ctx context.Context, maxSteps int) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !r.State().Computing {
			return n, nil
		}
		if maxSteps > 0 && n >= maxSteps {
			return n, ErrStepLimit
		}
		r.Step()
		n++
	}
}

// Run drives Step at hz steps per second until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context, hz int) error {
	if hz <= 0 {
		hz = DefaultStepHz
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
}

// Submit routes a submission from outside the step loop. Submissions for
// a day that is not active, or a second submission for the same part
// within one session, are discarded and reported as ErrProtocolViolation.
// A non-nil error with a Correct outcome means the progress write failed.
func (r *Runtime) Submit(sub puzzle.Submission) (puzzle.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitLocked(r.act, sub)
}

func (r *Runtime) submitLocked(act *activation, sub puzzle.Submission) (puzzle.Outcome, error) {
	switch {
	case act == nil:
		return r.violation(act, sub, "no active puzzle")
	case sub.ID != act.id:
		return r.violation(act, sub, "submission for inactive puzzle")
	case !sub.Part.Valid():
		return r.violation(act, sub, "invalid part")
	case act.submitted[sub.Part-1]:
		return r.violation(act, sub, "duplicate submission")
	}
	act.submitted[sub.Part-1] = true

	outcome, err := r.ledger.Check(sub.ID, sub.Part, sub.Value)
	r.metrics.Outcome(sub.ID, sub.Part, outcome)

	level := events.LevelInfo
	if outcome == puzzle.Unknown {
		level = events.LevelWarn
	}
	r.emit(level, events.AnswerChecked, "", map[string]interface{}{
		"day":        int(sub.ID),
		"part":       int(sub.Part),
		"value":      sub.Value,
		"outcome":    outcome.String(),
		"session_id": act.session,
	})

	if err != nil {
		r.emit(events.LevelError, events.ProgressPersistFailed, "progress write failed", map[string]interface{}{
			"day":        int(sub.ID),
			"part":       int(sub.Part),
			"session_id": act.session,
			"error":      err.Error(),
		})
		return outcome, err
	}
	return outcome, nil
}

func (r *Runtime) violation(act *activation, sub puzzle.Submission, reason string) (puzzle.Outcome, error) {
	r.metrics.Violation()

	fields := map[string]interface{}{
		"day":    int(sub.ID),
		"part":   int(sub.Part),
		"value":  sub.Value,
		"reason": reason,
	}
	if act != nil {
		fields["active_day"] = int(act.id)
		fields["session_id"] = act.session
	}
	r.emit(events.LevelError, events.ProtocolViolation, "submission discarded", fields)

	return puzzle.Unknown, fmt.Errorf("%s %s: %w: %s", sub.ID, sub.Part, ErrProtocolViolation, reason)
}

func (r *Runtime) emit(level, name, msg string, fields map[string]interface{}) {
	if r.bus == nil {
		return
	}
	if _, err := r.bus.Emit(level, name, msg, fields); err != nil {
		r.logger.Error("emit failed", slog.String("event", name), slog.Any("error", err))
	}
}

// Solvers lists the days that have a registered solver.
func (r *Runtime) Solvers() []puzzle.ID {
	return r.registry.Days()
}
