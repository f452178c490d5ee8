// Package day01 counts how often a 100-position dial lands on or passes
// zero while following a list of rotations.
package day01

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const (
	Day puzzle.ID = 1

	positions = 100
	start     = 50

	// RotationsPerStep is how many rotations the capsule applies per step.
	RotationsPerStep = 256
)

// Parse reads one rotation per line: "L<n>" or "R<n>". Left turns are
// negative. Blank lines are skipped.
func Parse(raw string) ([]int, error) {
	var out []int
	sc := bufio.NewScanner(strings.NewReader(raw))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		n, err := strconv.Atoi(text[1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: invalid distance %q", line, text)
		}
		switch text[0] {
		case 'R':
			out = append(out, n)
		case 'L':
			out = append(out, -n)
		default:
			return nil, fmt.Errorf("line %d: invalid direction %q", line, text)
		}
	}
	return out, sc.Err()
}

// Dial tracks the pointer and both zero counts.
type Dial struct {
	Pos int
	// Landings counts rotations that end on zero.
	Landings uint64
	// Passes counts every click that points at zero, including landings.
	Passes uint64
}

// NewDial returns a dial at its starting position.
func NewDial() *Dial {
	return &Dial{Pos: start}
}

// Turn applies one rotation.
func (d *Dial) Turn(n int) {
	if n >= 0 {
		d.Passes += uint64((d.Pos + n) / positions)
	} else {
		dist := -n
		switch {
		case d.Pos == 0:
			d.Passes += uint64(dist / positions)
		case dist >= d.Pos:
			d.Passes += uint64((dist-d.Pos)/positions + 1)
		}
	}

	d.Pos = ((d.Pos+n)%positions + positions) % positions
	if d.Pos == 0 {
		d.Landings++
	}
}

// Solver follows the rotations a batch at a time.
type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	rotations, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return &task{rotations: rotations, dial: NewDial()}, nil
}

type task struct {
	rotations []int
	next      int
	dial      *Dial
}

func (t *task) Step() ([]puzzle.Submission, bool) {
	end := min(t.next+RotationsPerStep, len(t.rotations))
	for _, n := range t.rotations[t.next:end] {
		t.dial.Turn(n)
	}
	t.next = end

	if t.next < len(t.rotations) {
		return nil, false
	}
	return []puzzle.Submission{
		{ID: Day, Part: puzzle.Part1, Value: t.dial.Landings},
		{ID: Day, Part: puzzle.Part2, Value: t.dial.Passes},
	}, true
}
