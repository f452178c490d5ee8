// Package day06 evaluates a worksheet of vertical arithmetic problems,
// read first row-wise and then column-wise.
package day06

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const Day puzzle.ID = 6

// Op is a problem's operator.
type Op byte

const (
	Add      Op = '+'
	Multiply Op = '*'
)

// Problem is a list of operands combined with one operator.
type Problem struct {
	Numbers []uint64
	Op      Op
}

// Eval applies the operator across the numbers.
func (p Problem) Eval() uint64 {
	if p.Op == Multiply {
		v := uint64(1)
		for _, n := range p.Numbers {
			v *= n
		}
		return v
	}
	var v uint64
	for _, n := range p.Numbers {
		v += n
	}
	return v
}

// Total sums the value of every problem.
func Total(problems []Problem) uint64 {
	var t uint64
	for _, p := range problems {
		t += p.Eval()
	}
	return t
}

func lines(raw string) []string {
	out := strings.Split(strings.ReplaceAll(raw, "\r", ""), "\n")
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

// ParseRows reads each whitespace-separated column of tokens as one
// problem. The last line holds the operators.
func ParseRows(raw string) ([]Problem, error) {
	var problems []Problem
	for _, line := range lines(raw) {
		for i, tok := range strings.Fields(line) {
			if i >= len(problems) {
				problems = append(problems, Problem{Op: Add})
			}
			switch tok {
			case "+":
				problems[i].Op = Add
			case "*":
				problems[i].Op = Multiply
			default:
				n, err := strconv.ParseUint(tok, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("token %q: %w", tok, err)
				}
				problems[i].Numbers = append(problems[i].Numbers, n)
			}
		}
	}
	return problems, nil
}

// ParseColumns reads problems as blocks of character columns separated by
// all-blank columns. Each character column, read top to bottom, is one
// number; the operator sits in the last line of the block.
func ParseColumns(raw string) ([]Problem, error) {
	rows := lines(raw)
	if len(rows) < 2 {
		return nil, nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	grid := make([][]byte, len(rows))
	for i, r := range rows {
		grid[i] = []byte(r + strings.Repeat(" ", width-len(r)))
	}

	digits := grid[:len(grid)-1]
	ops := grid[len(grid)-1]

	var problems []Problem
	cur := Problem{Op: Multiply}
	open := false
	flush := func() {
		if open {
			problems = append(problems, cur)
		}
		cur = Problem{Op: Multiply}
		open = false
	}

	for x := 0; x < width; x++ {
		var num []byte
		for _, row := range digits {
			if row[x] != ' ' {
				num = append(num, row[x])
			}
		}
		if len(num) == 0 && ops[x] == ' ' {
			flush()
			continue
		}
		open = true
		if ops[x] == byte(Add) {
			cur.Op = Add
		}
		if len(num) == 0 {
			continue
		}
		n, err := strconv.ParseUint(string(num), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", x+1, err)
		}
		cur.Numbers = append(cur.Numbers, n)
	}
	flush()
	return problems, nil
}

type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	byRow, err := ParseRows(raw)
	if err != nil {
		return nil, err
	}
	byColumn, err := ParseColumns(raw)
	if err != nil {
		return nil, err
	}
	return orchestrator.Sequential(Day,
		func() uint64 { return Total(byRow) },
		func() uint64 { return Total(byColumn) },
	), nil
}
