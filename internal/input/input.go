// Package input supplies the raw puzzle text for a selected day.
package input

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

// ErrNotFound is returned when no input exists for a day.
var ErrNotFound = errors.New("input not found")

// Provider maps a puzzle id to its raw text.
type Provider interface {
	Load(ctx context.Context, id puzzle.ID) (string, error)
}

// DirProvider reads inputs from <dir>/dayNN.input.
type DirProvider struct {
	dir string
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir}
}

// FileName returns the input file name for a day.
func FileName(id puzzle.ID) string {
	return fmt.Sprintf("day%02d.input", uint8(id))
}

// Path returns the full path of the input file for id.
func (p *DirProvider) Path(id puzzle.ID) string {
	return filepath.Join(p.dir, FileName(id))
}

// Load reads the input for id. An empty file is a valid (empty) input.
func (p *DirProvider) Load(ctx context.Context, id puzzle.ID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !id.Valid() {
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	b, err := os.ReadFile(p.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("read input for %s: %w", id, err)
	}
	return string(b), nil
}

// EnsureFiles creates an empty placeholder input for every day that does not
// have one yet. Existing files are left untouched. It returns the number of
// files created.
func EnsureFiles(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create input directory %s: %w", dir, err)
	}

	created := 0
	for _, id := range puzzle.All() {
		path := filepath.Join(dir, FileName(id))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return created, fmt.Errorf("create %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// MapProvider serves inputs from memory. Days without an entry are reported
// as not found.
type MapProvider map[puzzle.ID]string

// Load returns the stored input for id.
func (m MapProvider) Load(ctx context.Context, id puzzle.ID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, ok := m[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return raw, nil
}
