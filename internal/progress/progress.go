// Package progress keeps the completion record: which (day, part) pairs have
// ever been answered correctly. The record is written through to durable
// storage on every change.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
	"github.com/AaronLay10/AdventEngine/internal/storage"
)

const (
	// DefaultNamespace prefixes every persisted key.
	DefaultNamespace = "advent"

	recordKey = "CalendarState25"
	seedKey   = "Seed"

	writeTimeout = 5 * time.Second
)

// DayState holds the two completion bits of one day.
type DayState struct {
	Part1Done bool `json:"puzzle1_completed"`
	Part2Done bool `json:"puzzle2_completed"`
}

// Done reports the bit for part.
func (d DayState) Done(part puzzle.Part) bool {
	switch part {
	case puzzle.Part1:
		return d.Part1Done
	case puzzle.Part2:
		return d.Part2Done
	}
	return false
}

// Record is the completion state of the whole calendar.
type Record struct {
	Days [puzzle.Count]DayState
}

type recordJSON struct {
	Days []DayState `json:"days"`
}

// MarshalJSON encodes the record as {"days":[...]}.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{Days: r.Days[:]})
}

// UnmarshalJSON decodes a record. Extra days are ignored; missing days stay
// incomplete.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{}
	copy(r.Days[:], raw.Days)
	return nil
}

// Done reports whether (id, part) has been verified correct.
func (r Record) Done(id puzzle.ID, part puzzle.Part) bool {
	if !id.Valid() {
		return false
	}
	return r.Days[id.Index()].Done(part)
}

// Stars counts completed parts across the calendar.
func (r Record) Stars() int {
	n := 0
	for _, d := range r.Days {
		if d.Part1Done {
			n++
		}
		if d.Part2Done {
			n++
		}
	}
	return n
}

// Change describes one bit flipping from false to true.
type Change struct {
	ID     puzzle.ID
	Part   puzzle.Part
	Record Record
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace sets the key prefix.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier registers fn to be called after every in-memory change,
// before the write-through.
func WithNotifier(fn func(Change)) Option {
	return func(s *Store) {
		s.notify = fn
	}
}

// Store owns the completion record and the cosmetic seed.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	namespace string
	logger    *slog.Logger
	notify    func(Change)

	record Record
	dirty  bool

	seed    uint64
	hasSeed bool
}

// Open loads the record from kv, defaulting to all-incomplete when no record
// has been saved yet.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:        kv,
		namespace: DefaultNamespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	b, err := kv.Get(ctx, s.key(recordKey))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.Info("no saved progress, starting fresh", slog.String("namespace", s.namespace))
	case err != nil:
		return nil, fmt.Errorf("load progress: %w", err)
	default:
		if err := json.Unmarshal(b, &s.record); err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
		s.logger.Info("progress restored",
			slog.String("namespace", s.namespace),
			slog.Int("stars", s.record.Stars()))
	}

	return s, nil
}

func (s *Store) key(name string) string {
	return s.namespace + "/" + name
}

// Record returns a copy of the current record.
func (s *Store) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Done reports whether (id, part) is complete.
func (s *Store) Done(id puzzle.ID, part puzzle.Part) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Done(id, part)
}

// MarkDone sets the bit for (id, part) and persists the record. It reports
// whether the bit changed. The in-memory bit is kept even when the write
// fails; the next MarkDone call retries the write.
func (s *Store) MarkDone(id puzzle.ID, part puzzle.Part) (bool, error) {
	if !id.Valid() || !part.Valid() {
		return false, fmt.Errorf("mark done: invalid %s %s", id, part)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day := &s.record.Days[id.Index()]
	changed := !day.Done(part)
	if !changed && !s.dirty {
		return false, nil
	}

	if changed {
		switch part {
		case puzzle.Part1:
			day.Part1Done = true
		case puzzle.Part2:
			day.Part2Done = true
		}
		s.dirty = true
		if s.notify != nil {
			s.notify(Change{ID: id, Part: part, Record: s.record})
		}
	}

	if err := s.flushLocked(); err != nil {
		s.logger.Error("progress write failed",
			slog.String("day", id.String()),
			slog.String("part", part.String()),
			slog.String("error", err.Error()))
		return changed, err
	}
	return changed, nil
}

// Flush writes the record if an earlier write failed.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	b, err := json.Marshal(s.record)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.kv.Put(ctx, s.key(recordKey), b); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	s.dirty = false
	return nil
}

// Seed returns the cosmetic shuffle seed, creating and saving a random one
// the first time. An existing stored seed is never rewritten.
func (s *Store) Seed(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasSeed {
		return s.seed, nil
	}

	b, err := s.kv.Get(ctx, s.key(seedKey))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		seed := rand.Uint64()
		if err := s.kv.Put(ctx, s.key(seedKey), []byte(strconv.FormatUint(seed, 10))); err != nil {
			return 0, fmt.Errorf("save seed: %w", err)
		}
		s.seed, s.hasSeed = seed, true
	case err != nil:
		return 0, fmt.Errorf("load seed: %w", err)
	default:
		seed, err := strconv.ParseUint(string(b), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decode seed: %w", err)
		}
		s.seed, s.hasSeed = seed, true
	}
	return s.seed, nil
}
