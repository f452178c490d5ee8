package day04

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

const example = `..@@.@@@@.
@@@.@.@.@@
@@@@@.@.@@
@.@@@@..@.
@@.@@@@.@@
.@@@@@@@.@
.@.@.@.@@@
@.@@@.@@@@
.@@@@@@@@.
@.@.@@@.@.
`

func TestAccessible(t *testing.T) {
	g := Parse(example)
	assert.Len(t, g.Accessible(), 13)
}

func TestRemoveRounds(t *testing.T) {
	g := Parse(example)
	total := 0
	for {
		n := g.RemoveRound()
		if n == 0 {
			break
		}
		total += n
	}
	assert.Equal(t, 43, total)
}

func TestSolverPeelsOneRoundPerStep(t *testing.T) {
	task, err := Solver{}.Begin(example)
	require.NoError(t, err)

	subs, done := task.Step()
	require.False(t, done)
	assert.Equal(t, []puzzle.Submission{{ID: Day, Part: puzzle.Part1, Value: 13}}, subs)

	steps := 1
	for !done {
		subs, done = task.Step()
		steps++
		require.Less(t, steps, 100)
	}
	assert.Greater(t, steps, 2)
	assert.Equal(t, []puzzle.Submission{{ID: Day, Part: puzzle.Part2, Value: 43}}, subs)
}

func TestEmptyGrid(t *testing.T) {
	task, err := Solver{}.Begin("")
	require.NoError(t, err)

	subs, _ := task.Step()
	assert.Equal(t, uint64(0), subs[0].Value)
	subs, done := task.Step()
	assert.True(t, done)
	assert.Equal(t, uint64(0), subs[0].Value)
}
