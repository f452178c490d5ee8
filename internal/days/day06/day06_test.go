package day06

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Trailing blanks are significant for the column reading.
const example = "123 328  51 64 \n" +
	" 45 64  387 23 \n" +
	"  6 98  215 314\n" +
	"*   +   *   +  \n"

func TestParseRows(t *testing.T) {
	problems, err := ParseRows(example)
	require.NoError(t, err)
	require.Len(t, problems, 4)
	assert.Equal(t, Problem{Numbers: []uint64{123, 45, 6}, Op: Multiply}, problems[0])
	assert.Equal(t, uint64(4277556), Total(problems))
}

func TestParseColumns(t *testing.T) {
	problems, err := ParseColumns(example)
	require.NoError(t, err)
	require.Len(t, problems, 4)
	assert.Equal(t, Problem{Numbers: []uint64{1, 24, 356}, Op: Multiply}, problems[0])
	assert.Equal(t, Problem{Numbers: []uint64{623, 431, 4}, Op: Add}, problems[3])
	assert.Equal(t, uint64(3263827), Total(problems))
}

func TestParseColumnsPadsShortLines(t *testing.T) {
	problems, err := ParseColumns("12\n3\n+\n")
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, uint64(13+2), problems[0].Eval())
}

func TestParseRowsRejectsJunk(t *testing.T) {
	_, err := ParseRows("1 x\n+ +\n")
	assert.Error(t, err)
}

func TestSolverTask(t *testing.T) {
	task, err := Solver{}.Begin(example)
	require.NoError(t, err)

	subs, _ := task.Step()
	require.Len(t, subs, 1)
	assert.Equal(t, uint64(4277556), subs[0].Value)

	subs, done := task.Step()
	assert.True(t, done)
	assert.Equal(t, uint64(3263827), subs[0].Value)
}
