// Package ledger verifies submitted answers against the known expectations.
package ledger

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

//go:embed answers.yaml
var embeddedAnswers []byte

// Key addresses one expectation.
type Key struct {
	ID   puzzle.ID
	Part puzzle.Part
}

// Expectations maps (day, part) to the expected answer.
type Expectations map[Key]uint64

// Recorder is notified the first time (and every time) an answer is correct.
// It reports whether the completion record changed.
type Recorder interface {
	MarkDone(id puzzle.ID, part puzzle.Part) (bool, error)
}

// Ledger checks submissions. Expectations are read-only after construction.
type Ledger struct {
	expected Expectations
	recorder Recorder
}

// New creates a ledger over a copy of expected. recorder may be nil.
func New(expected Expectations, recorder Recorder) *Ledger {
	cp := make(Expectations, len(expected))
	for k, v := range expected {
		cp[k] = v
	}
	return &Ledger{expected: cp, recorder: recorder}
}

// Expected returns the expected answer for (id, part), if one is known.
func (l *Ledger) Expected(id puzzle.ID, part puzzle.Part) (uint64, bool) {
	v, ok := l.expected[Key{ID: id, Part: part}]
	return v, ok
}

// Len returns the number of known expectations.
func (l *Ledger) Len() int {
	return len(l.expected)
}

// Check classifies value against the expectation for (id, part).
// A Correct outcome marks the pair done on the recorder. The returned error
// is only ever a recorder failure; the outcome is valid regardless.
func (l *Ledger) Check(id puzzle.ID, part puzzle.Part, value uint64) (puzzle.Outcome, error) {
	expected, ok := l.expected[Key{ID: id, Part: part}]
	if !ok {
		return puzzle.Unknown, nil
	}

	switch {
	case expected == value:
		if l.recorder != nil {
			if _, err := l.recorder.MarkDone(id, part); err != nil {
				return puzzle.Correct, fmt.Errorf("record %s %s: %w", id, part, err)
			}
		}
		return puzzle.Correct, nil
	case expected < value:
		// The real answer is lower than what was submitted.
		return puzzle.TooHigh, nil
	default:
		return puzzle.TooLow, nil
	}
}

type answersFile struct {
	Version int                  `yaml:"version"`
	Answers map[int]answersEntry `yaml:"answers"`
}

type answersEntry struct {
	Part1 *uint64 `yaml:"part1"`
	Part2 *uint64 `yaml:"part2"`
}

// ParseAnswers decodes an answers YAML document.
func ParseAnswers(b []byte) (Expectations, error) {
	var f answersFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported answers version: %d", f.Version)
	}

	out := make(Expectations)
	for day, entry := range f.Answers {
		if day < 1 || day > puzzle.Count {
			return nil, fmt.Errorf("answers: invalid day %d", day)
		}
		id := puzzle.ID(day)
		if entry.Part1 != nil {
			out[Key{ID: id, Part: puzzle.Part1}] = *entry.Part1
		}
		if entry.Part2 != nil {
			out[Key{ID: id, Part: puzzle.Part2}] = *entry.Part2
		}
	}
	return out, nil
}

// Embedded returns the expectations compiled into the binary.
func Embedded() (Expectations, error) {
	return ParseAnswers(embeddedAnswers)
}

// LoadFile reads an answers file from disk.
func LoadFile(path string) (Expectations, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAnswers(b)
}

// EnsureFile writes an empty answers file with usage notes at path. It
// reports whether the file was created; an existing file is left alone.
func EnsureFile(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create answers directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(embeddedAnswers); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, f.Close()
}

// Merge returns base with every entry of overlay applied on top.
func Merge(base, overlay Expectations) Expectations {
	out := make(Expectations, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
