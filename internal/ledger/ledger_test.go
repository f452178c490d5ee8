package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

type fakeRecorder struct {
	done  map[Key]bool
	marks int
	err   error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{done: make(map[Key]bool)}
}

func (r *fakeRecorder) MarkDone(id puzzle.ID, part puzzle.Part) (bool, error) {
	r.marks++
	k := Key{ID: id, Part: part}
	changed := !r.done[k]
	r.done[k] = true
	return changed, r.err
}

func TestCheckScenario(t *testing.T) {
	rec := newFakeRecorder()
	l := New(Expectations{{ID: 1, Part: puzzle.Part1}: 42}, rec)

	out, err := l.Check(1, puzzle.Part1, 42)
	require.NoError(t, err)
	assert.Equal(t, puzzle.Correct, out)
	assert.True(t, rec.done[Key{ID: 1, Part: puzzle.Part1}])

	out, err = l.Check(1, puzzle.Part1, 50)
	require.NoError(t, err)
	assert.Equal(t, puzzle.TooHigh, out)

	out, err = l.Check(1, puzzle.Part1, 30)
	require.NoError(t, err)
	assert.Equal(t, puzzle.TooLow, out)

	marks := rec.marks
	out, err = l.Check(7, puzzle.Part2, 10)
	require.NoError(t, err)
	assert.Equal(t, puzzle.Unknown, out)
	assert.Equal(t, marks, rec.marks, "unknown outcome must not touch the record")
}

func TestCheckIsRepeatable(t *testing.T) {
	rec := newFakeRecorder()
	l := New(Expectations{{ID: 2, Part: puzzle.Part2}: 9}, rec)

	for i := 0; i < 3; i++ {
		out, err := l.Check(2, puzzle.Part2, 9)
		require.NoError(t, err)
		assert.Equal(t, puzzle.Correct, out)
	}
	for i := 0; i < 2; i++ {
		out, _ := l.Check(2, puzzle.Part2, 1)
		assert.Equal(t, puzzle.TooLow, out)
	}
}

func TestCheckRecorderFailureStillCorrect(t *testing.T) {
	rec := newFakeRecorder()
	rec.err = errors.New("disk full")
	l := New(Expectations{{ID: 4, Part: puzzle.Part1}: 13}, rec)

	out, err := l.Check(4, puzzle.Part1, 13)
	assert.Equal(t, puzzle.Correct, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestNewCopiesExpectations(t *testing.T) {
	exp := Expectations{{ID: 1, Part: puzzle.Part1}: 1}
	l := New(exp, nil)
	exp[Key{ID: 1, Part: puzzle.Part1}] = 2

	v, ok := l.Expected(1, puzzle.Part1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), v)
}

func TestParseAnswers(t *testing.T) {
	doc := []byte(`
version: 1
answers:
  3:
    part1: 357
    part2: 3121910778619
  5:
    part1: 3
`)
	exp, err := ParseAnswers(doc)
	require.NoError(t, err)
	assert.Len(t, exp, 3)
	assert.Equal(t, uint64(3121910778619), exp[Key{ID: 3, Part: puzzle.Part2}])
	_, ok := exp[Key{ID: 5, Part: puzzle.Part2}]
	assert.False(t, ok)
}

func TestParseAnswersRejectsBadInput(t *testing.T) {
	_, err := ParseAnswers([]byte("version: 2\nanswers: {}\n"))
	assert.Error(t, err)

	_, err = ParseAnswers([]byte("version: 1\nanswers:\n  26:\n    part1: 1\n"))
	assert.Error(t, err)

	_, err = ParseAnswers([]byte("version: 1\nanswers:\n  0:\n    part1: 1\n"))
	assert.Error(t, err)
}

func TestEmbeddedParses(t *testing.T) {
	_, err := Embedded()
	require.NoError(t, err)
}

func TestLoadFileAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nanswers:\n  1:\n    part1: 7\n"), 0o644))

	overlay, err := LoadFile(path)
	require.NoError(t, err)

	base := Expectations{
		{ID: 1, Part: puzzle.Part1}: 5,
		{ID: 1, Part: puzzle.Part2}: 6,
	}
	merged := Merge(base, overlay)
	assert.Equal(t, uint64(7), merged[Key{ID: 1, Part: puzzle.Part1}])
	assert.Equal(t, uint64(6), merged[Key{ID: 1, Part: puzzle.Part2}])
	assert.Equal(t, uint64(5), base[Key{ID: 1, Part: puzzle.Part1}])
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "answers.yaml")

	created, err := EnsureFile(path)
	require.NoError(t, err)
	assert.True(t, created)

	expected, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, expected)

	require.NoError(t, os.WriteFile(path, []byte("version: 1\nanswers:\n  2:\n    part1: 11\n"), 0o644))
	created, err = EnsureFile(path)
	require.NoError(t, err)
	assert.False(t, created)

	expected, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), expected[Key{ID: 2, Part: puzzle.Part1}])
}
