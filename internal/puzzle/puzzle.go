// Package puzzle defines the identifiers and value types shared by the
// lifecycle runtime, the answer ledger, the progress store and the solvers.
package puzzle

import (
	"fmt"
	"strconv"
)

// ID identifies one of the 25 days. The zero value is the Idle sentinel.
type ID uint8

const (
	// None means no puzzle is selected.
	None ID = 0

	// Count is the number of puzzles in the calendar.
	Count = 25
)

// Valid reports whether id names a real puzzle (1..25).
func (id ID) Valid() bool {
	return id >= 1 && id <= Count
}

// Index returns the zero-based position of id in a calendar-sized array.
// It must only be called on valid ids.
func (id ID) Index() int {
	return int(id) - 1
}

func (id ID) String() string {
	if id == None {
		return "none"
	}
	return fmt.Sprintf("day%02d", uint8(id))
}

// Parse reads a day number in 0..25.
func Parse(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return None, fmt.Errorf("invalid day %q: %w", s, err)
	}
	if n > Count {
		return None, fmt.Errorf("invalid day %q: must be between 0 and %d", s, Count)
	}
	return ID(n), nil
}

// All returns every real puzzle id in calendar order.
func All() []ID {
	ids := make([]ID, 0, Count)
	for i := ID(1); i <= Count; i++ {
		ids = append(ids, i)
	}
	return ids
}

// Part is one of the two scored components of a puzzle.
type Part uint8

const (
	Part1 Part = 1
	Part2 Part = 2
)

// Parts lists both parts in order.
var Parts = [2]Part{Part1, Part2}

func (p Part) String() string {
	switch p {
	case Part1:
		return "part1"
	case Part2:
		return "part2"
	default:
		return fmt.Sprintf("part(%d)", uint8(p))
	}
}

// Valid reports whether p is Part1 or Part2.
func (p Part) Valid() bool {
	return p == Part1 || p == Part2
}

// Outcome classifies a submitted answer against the known expectation.
type Outcome uint8

const (
	Unknown Outcome = iota
	Correct
	TooLow
	TooHigh
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case TooLow:
		return "too_low"
	case TooHigh:
		return "too_high"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String. Unrecognised text yields
// Unknown.
func ParseOutcome(s string) Outcome {
	switch s {
	case "correct":
		return Correct
	case "too_low":
		return TooLow
	case "too_high":
		return TooHigh
	}
	return Unknown
}

// Submission is a single answer produced by a solver.
type Submission struct {
	ID    ID
	Part  Part
	Value uint64
}
