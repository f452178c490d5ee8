// Package day02 sums product IDs whose decimal form is a repeated digit
// sequence.
package day02

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const Day puzzle.ID = 2

// Range is an inclusive ID range.
type Range struct {
	Lo, Hi uint64
}

// Parse reads comma-separated "lo-hi" ranges. Whitespace is ignored.
func Parse(raw string) ([]Range, error) {
	var out []Range
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		lo, hi, ok := strings.Cut(field, "-")
		if !ok {
			return nil, fmt.Errorf("range %q: missing '-'", field)
		}
		a, err := strconv.ParseUint(lo, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", field, err)
		}
		b, err := strconv.ParseUint(hi, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", field, err)
		}
		if b < a {
			return nil, fmt.Errorf("range %q: end before start", field)
		}
		out = append(out, Range{Lo: a, Hi: b})
	}
	return out, nil
}

// Doubled reports whether digits is one sequence written exactly twice.
func Doubled(digits []byte) bool {
	if len(digits)%2 != 0 {
		return false
	}
	half := len(digits) / 2
	return string(digits[:half]) == string(digits[half:])
}

// Repeated reports whether digits is one sequence written two or more
// times.
func Repeated(digits []byte) bool {
	for w := len(digits) / 2; w >= 1; w-- {
		if len(digits)%w != 0 {
			continue
		}
		match := true
		for i := w; i < len(digits); i += w {
			if string(digits[i:i+w]) != string(digits[:w]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Sum adds every id in ranges for which invalid reports true.
func Sum(ranges []Range, invalid func([]byte) bool) uint64 {
	var total uint64
	buf := make([]byte, 0, 20)
	for _, r := range ranges {
		for id := r.Lo; ; id++ {
			buf = strconv.AppendUint(buf[:0], id, 10)
			if invalid(buf) {
				total += id
			}
			if id == r.Hi {
				break
			}
		}
	}
	return total
}

type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	ranges, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return orchestrator.Sequential(Day,
		func() uint64 { return Sum(ranges, Doubled) },
		func() uint64 { return Sum(ranges, Repeated) },
	), nil
}
