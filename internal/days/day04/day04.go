// Package day04 finds paper rolls a forklift can reach: rolls with fewer
// than four rolls among their eight neighbours.
package day04

import (
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const (
	Day puzzle.ID = 4

	roll = '@'
	// crowded is the neighbour count at which a roll becomes unreachable.
	crowded = 4
)

// Point is a grid cell.
type Point struct{ X, Y int }

// Grid is the set of roll positions.
type Grid map[Point]struct{}

// Parse collects every '@' cell.
func Parse(raw string) Grid {
	g := make(Grid)
	for y, line := range strings.Split(raw, "\n") {
		for x, ch := range line {
			if ch == roll {
				g[Point{x, y}] = struct{}{}
			}
		}
	}
	return g
}

func (g Grid) neighbours(p Point) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if _, ok := g[Point{p.X + dx, p.Y + dy}]; ok {
				n++
			}
		}
	}
	return n
}

// Accessible returns the rolls that can be reached right now.
func (g Grid) Accessible() []Point {
	var out []Point
	for p := range g {
		if g.neighbours(p) < crowded {
			out = append(out, p)
		}
	}
	return out
}

// RemoveRound removes every currently accessible roll at once and returns
// how many were removed.
func (g Grid) RemoveRound() int {
	reach := g.Accessible()
	for _, p := range reach {
		delete(g, p)
	}
	return len(reach)
}

type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	return &task{grid: Parse(raw)}, nil
}

// task reports part 1 on its first step, then peels one removal round per
// step until nothing more can be removed.
type task struct {
	grid    Grid
	started bool
	removed uint64
}

func (t *task) Step() ([]puzzle.Submission, bool) {
	if !t.started {
		t.started = true
		return []puzzle.Submission{
			{ID: Day, Part: puzzle.Part1, Value: uint64(len(t.grid.Accessible()))},
		}, false
	}

	n := t.grid.RemoveRound()
	t.removed += uint64(n)
	if n > 0 {
		return nil, false
	}
	return []puzzle.Submission{{ID: Day, Part: puzzle.Part2, Value: t.removed}}, true
}
