// Package days holds the built-in solver table.
package days

import (
	"github.com/AaronLay10/AdventEngine/internal/days/day01"
	"github.com/AaronLay10/AdventEngine/internal/days/day02"
	"github.com/AaronLay10/AdventEngine/internal/days/day03"
	"github.com/AaronLay10/AdventEngine/internal/days/day04"
	"github.com/AaronLay10/AdventEngine/internal/days/day05"
	"github.com/AaronLay10/AdventEngine/internal/days/day06"
	"github.com/AaronLay10/AdventEngine/internal/days/day07"
	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
)

// All returns every built-in solver.
func All() []orchestrator.Solver {
	return []orchestrator.Solver{
		day01.Solver{},
		day02.Solver{},
		day03.Solver{},
		day04.Solver{},
		day05.Solver{},
		day06.Solver{},
		day07.Solver{},
	}
}

// Registry returns a registry over All.
func Registry() (*orchestrator.Registry, error) {
	return orchestrator.NewRegistry(All()...)
}
