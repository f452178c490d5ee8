// Package day07 follows a tachyon beam down a manifold of splitters.
package day07

import (
	"errors"
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const (
	Day puzzle.ID = 7

	start    = 'S'
	splitter = '^'

	// RowsPerStep is how many manifold rows the capsule advances per step.
	RowsPerStep = 16
)

// ErrNoStart is returned when the manifold has no 'S'.
var ErrNoStart = errors.New("no beam start")

// Manifold is the parsed grid with the beam's current front.
type Manifold struct {
	rows [][]byte
	row  int
	// beams maps column to the number of timelines on it.
	beams map[int]uint64
	// Splits counts splitters that a beam has reached.
	Splits uint64
}

// Parse locates the start and returns a manifold ready to advance.
func Parse(raw string) (*Manifold, error) {
	m := &Manifold{beams: make(map[int]uint64)}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r", ""), "\n") {
		if line == "" {
			continue
		}
		m.rows = append(m.rows, []byte(line))
	}
	for y, r := range m.rows {
		if x := strings.IndexByte(string(r), start); x >= 0 {
			m.row = y
			m.beams[x] = 1
			return m, nil
		}
	}
	return nil, ErrNoStart
}

// Done reports whether the beam has left the bottom row.
func (m *Manifold) Done() bool {
	return m.row >= len(m.rows)-1
}

// Advance moves the beam front down one row.
func (m *Manifold) Advance() {
	if m.Done() {
		return
	}
	m.row++
	line := m.rows[m.row]
	next := make(map[int]uint64, len(m.beams)+1)
	for x, n := range m.beams {
		if x < 0 || x >= len(line) || line[x] != splitter {
			next[x] += n
			continue
		}
		m.Splits++
		if x > 0 {
			next[x-1] += n
		}
		if x+1 < len(line) {
			next[x+1] += n
		}
	}
	m.beams = next
}

// Timelines counts the distinct paths the beam has taken so far.
func (m *Manifold) Timelines() uint64 {
	var t uint64
	for _, n := range m.beams {
		t += n
	}
	return t
}

type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	m, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return orchestrator.TaskFunc(func() ([]puzzle.Submission, bool) {
		for i := 0; i < RowsPerStep && !m.Done(); i++ {
			m.Advance()
		}
		if !m.Done() {
			return nil, false
		}
		return []puzzle.Submission{
			{ID: Day, Part: puzzle.Part1, Value: m.Splits},
			{ID: Day, Part: puzzle.Part2, Value: m.Timelines()},
		}, true
	}), nil
}
