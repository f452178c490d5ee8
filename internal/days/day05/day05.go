// Package day05 checks ingredient IDs against fresh ranges.
package day05

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const Day puzzle.ID = 5

// Range is an inclusive fresh range.
type Range struct {
	Lo, Hi uint64
}

// Inventory is the parsed input: fresh ranges, then available IDs.
type Inventory struct {
	Fresh []Range
	IDs   []uint64
}

// Parse reads "lo-hi" lines up to the first blank line, then one ID per
// line.
func Parse(raw string) (*Inventory, error) {
	inv := &Inventory{}
	sc := bufio.NewScanner(strings.NewReader(raw))
	ranges := true
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			ranges = false
			continue
		}
		if ranges {
			lo, hi, ok := strings.Cut(text, "-")
			if !ok {
				return nil, fmt.Errorf("line %d: invalid range %q", line, text)
			}
			a, err := strconv.ParseUint(lo, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			b, err := strconv.ParseUint(hi, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			inv.Fresh = append(inv.Fresh, Range{Lo: min(a, b), Hi: max(a, b)})
			continue
		}
		id, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		inv.IDs = append(inv.IDs, id)
	}
	return inv, sc.Err()
}

// Merge returns the union of ranges as sorted, disjoint ranges.
func Merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })

	out := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi || r.Lo == last.Hi+1 {
			last.Hi = max(last.Hi, r.Hi)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Fresh reports whether id falls in any of the merged ranges.
func Fresh(merged []Range, id uint64) bool {
	i := sort.Search(len(merged), func(i int) bool { return merged[i].Hi >= id })
	return i < len(merged) && merged[i].Lo <= id
}

// CountFresh counts available IDs that are fresh.
func (inv *Inventory) CountFresh() uint64 {
	merged := Merge(inv.Fresh)
	var n uint64
	for _, id := range inv.IDs {
		if Fresh(merged, id) {
			n++
		}
	}
	return n
}

// FreshIDs counts every ID covered by at least one range.
func (inv *Inventory) FreshIDs() uint64 {
	var n uint64
	for _, r := range Merge(inv.Fresh) {
		n += r.Hi - r.Lo + 1
	}
	return n
}

type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	inv, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return orchestrator.Sequential(Day, inv.CountFresh, inv.FreshIDs), nil
}
