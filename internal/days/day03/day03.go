// Package day03 picks, per bank of batteries, the digits that form the
// largest joltage while keeping their order in the bank.
package day03

import (
	"bufio"
	"strings"

	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const (
	Day puzzle.ID = 3

	// Slots is the digit count used for part 2.
	Slots = 12
)

// ParseBanks reads one bank per line. Only the digits 1-9 are kept; lines
// with no digits are skipped.
func ParseBanks(raw string) [][]uint8 {
	var banks [][]uint8
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		var bank []uint8
		for _, ch := range sc.Text() {
			if ch >= '1' && ch <= '9' {
				bank = append(bank, uint8(ch-'0'))
			}
		}
		if len(bank) > 0 {
			banks = append(banks, bank)
		}
	}
	return banks
}

// MaxTwoDigit returns the largest two-digit number formed by a digit and
// any later digit of bank. The last digit can only be the units digit.
func MaxTwoDigit(bank []uint8) uint64 {
	if len(bank) == 0 {
		return 0
	}

	var tens uint8
	units := bank[len(bank)-1]
	for i, v := range bank {
		// A strictly larger tens digit restarts the units search after it.
		if v > tens && i != len(bank)-1 {
			tens = v
			units = 0
		} else if v > units {
			units = v
		}
	}
	return uint64(tens)*10 + uint64(units)
}

// MaxKDigit returns the largest number formed by at most k digits of bank,
// in bank order. Each digit may replace the first eligible slot it beats,
// clearing every slot after it. A slot is eligible only while enough digits
// remain to fill the slots after it, so a short bank leaves leading slots
// at zero.
func MaxKDigit(bank []uint8, k int) uint64 {
	if k <= 0 {
		return 0
	}

	slots := make([]uint8, k)
	for i, v := range bank {
		left := len(bank) - i
		first := max(k-left, 0)
		for j := first; j < k; j++ {
			if v > slots[j] {
				slots[j] = v
				clear(slots[j+1:])
				break
			}
		}
	}

	var n uint64
	for _, v := range slots {
		n = n*10 + uint64(v)
	}
	return n
}

type Solver struct{}

func (Solver) Day() puzzle.ID { return Day }

func (Solver) Begin(raw string) (orchestrator.Task, error) {
	banks := ParseBanks(raw)
	return orchestrator.Sequential(Day,
		func() uint64 {
			var total uint64
			for _, b := range banks {
				total += MaxTwoDigit(b)
			}
			return total
		},
		func() uint64 {
			var total uint64
			for _, b := range banks {
				total += MaxKDigit(b, Slots)
			}
			return total
		},
	), nil
}
