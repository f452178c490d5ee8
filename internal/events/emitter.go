// Package events is the notification channel between the engine and
// whatever presents it: every lifecycle transition, verification outcome,
// progress change and protocol violation is emitted here.
package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 256

// Sink persists emitted events. The postgres client satisfies it.
type Sink interface {
	Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error
}

type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Bus buffers, logs, persists and fans out events.
type Bus struct {
	buffer *RingBuffer
	logger *slog.Logger
	total  atomic.Uint64

	subMu       sync.RWMutex
	subscribers map[Subscriber]struct{}

	sinkMu          sync.RWMutex
	sink            Sink
	sinkErrorLogged bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger mirrors every event into l.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// WithBufferSize sets how many recent events are kept.
func WithBufferSize(n int) Option {
	return func(b *Bus) { b.buffer = NewRingBuffer(n) }
}

// NewBus creates an event bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		buffer:      NewRingBuffer(defaultBufferSize),
		subscribers: make(map[Subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetSink sets the persistent sink. A nil sink disables persistence.
func (b *Bus) SetSink(s Sink) {
	b.sinkMu.Lock()
	b.sink = s
	b.sinkErrorLogged = false
	b.sinkMu.Unlock()
}

// Emit validates, buffers, logs, persists and broadcasts an event.
func (b *Bus) Emit(level, name, msg string, fields map[string]interface{}) (Event, error) {
	if err := Validate(name); err != nil {
		return Event{}, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	b.buffer.Add(e)
	b.total.Add(1)
	b.log(e)
	b.persist(ts, e)
	b.broadcast(e)

	return e, nil
}

func (b *Bus) log(e Event) {
	if b.logger == nil {
		return
	}

	attrs := make([]slog.Attr, 0, len(e.Fields)+1)
	attrs = append(attrs, slog.String("event", e.Name))
	for k, v := range e.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	lvl := slog.LevelInfo
	switch e.Level {
	case LevelWarn:
		lvl = slog.LevelWarn
	case LevelError:
		lvl = slog.LevelError
	}

	msg := e.Message
	if msg == "" {
		msg = e.Name
	}
	b.logger.LogAttrs(context.Background(), lvl, msg, attrs...)
}

func (b *Bus) persist(ts time.Time, e Event) {
	b.sinkMu.RLock()
	sink := b.sink
	b.sinkMu.RUnlock()

	if sink == nil {
		return
	}

	sessionID, _ := e.Fields["session_id"].(string)
	if err := sink.Append(ts, e.Level, e.Name, e.Message, e.Fields, sessionID); err != nil {
		// Report once per sink. The report goes straight into the buffer,
		// not through Emit, so a failing sink cannot recurse.
		b.sinkMu.Lock()
		first := !b.sinkErrorLogged
		b.sinkErrorLogged = true
		b.sinkMu.Unlock()

		if first {
			errEvent := Event{
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Level:     LevelError,
				Name:      SystemError,
				Message:   "event sink append failed",
				Fields:    map[string]interface{}{"error": err.Error()},
			}
			b.buffer.Add(errEvent)
			b.log(errEvent)
		}
	}
}

// Snapshot returns all buffered events, oldest first.
func (b *Bus) Snapshot() []Event {
	return b.buffer.Snapshot()
}

// TotalCount returns the number of events emitted since creation.
func (b *Bus) TotalCount() uint64 {
	return b.total.Load()
}
