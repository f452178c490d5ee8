package orchestrator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

// ErrDuplicateSolver is returned when two solvers claim the same day.
var ErrDuplicateSolver = errors.New("duplicate solver")

// Solver reacts to compute requests for exactly one day.
type Solver interface {
	Day() puzzle.ID
	// Begin parses raw input and returns the capsule that will produce the
	// day's submissions. It must not block on I/O.
	Begin(raw string) (Task, error)
}

// Task is a resumable computation polled once per step. It returns any
// submissions produced during the step and whether it has finished.
// Dropping a Task cancels it.
type Task interface {
	Step() (subs []puzzle.Submission, done bool)
}

// TaskFunc adapts a function to Task.
type TaskFunc func() ([]puzzle.Submission, bool)

func (f TaskFunc) Step() ([]puzzle.Submission, bool) { return f() }

// Sequential returns a task that computes part 1 on its first step and
// part 2 on its second. A nil function skips that part.
func Sequential(id puzzle.ID, part1, part2 func() uint64) Task {
	fns := [2]func() uint64{part1, part2}
	next := 0
	return TaskFunc(func() ([]puzzle.Submission, bool) {
		for next < len(fns) {
			i := next
			next++
			if fns[i] == nil {
				continue
			}
			sub := puzzle.Submission{ID: id, Part: puzzle.Parts[i], Value: fns[i]()}
			return []puzzle.Submission{sub}, next == len(fns)
		}
		return nil, true
	})
}

// Registry is the static day -> solver table, built once at startup.
type Registry struct {
	solvers map[puzzle.ID]Solver
}

// NewRegistry builds a registry. Each solver must claim a distinct real day.
func NewRegistry(solvers ...Solver) (*Registry, error) {
	r := &Registry{solvers: make(map[puzzle.ID]Solver, len(solvers))}
	for _, s := range solvers {
		id := s.Day()
		if !id.Valid() {
			return nil, fmt.Errorf("register solver: invalid day %d", id)
		}
		if _, ok := r.solvers[id]; ok {
			return nil, fmt.Errorf("register solver for %s: %w", id, ErrDuplicateSolver)
		}
		r.solvers[id] = s
	}
	return r, nil
}

// Lookup returns the solver registered for id.
func (r *Registry) Lookup(id puzzle.ID) (Solver, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.solvers[id]
	return s, ok
}

// Days lists the registered days in ascending order.
func (r *Registry) Days() []puzzle.ID {
	if r == nil {
		return nil
	}
	ids := make([]puzzle.ID, 0, len(r.solvers))
	for id := range r.solvers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
