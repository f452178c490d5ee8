package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	sub1 := bus.Subscribe()
	assert.Equal(t, 1, bus.SubscriberCount())

	sub2 := bus.Subscribe()
	assert.Equal(t, 2, bus.SubscriberCount())

	bus.Unsubscribe(sub1)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Unsubscribe(sub2)
	assert.Equal(t, 0, bus.SubscriberCount())

	// Unsubscribing twice must not panic on a closed channel.
	bus.Unsubscribe(sub2)
}

func TestBroadcastToSubscribers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	_, err := bus.Emit(LevelInfo, PuzzleActivated, "", map[string]interface{}{"day": 3})
	require.NoError(t, err)

	select {
	case e := <-sub:
		assert.Equal(t, PuzzleActivated, e.Name)
		assert.Equal(t, 3, e.Fields["day"])
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for broadcast event")
	}
}

func TestEmitRejectsUnknownEvent(t *testing.T) {
	bus := NewBus()
	_, err := bus.Emit(LevelInfo, "puzzle.started", "", nil)
	assert.Error(t, err)
	assert.Empty(t, bus.Snapshot())
	assert.Zero(t, bus.TotalCount())
}

func TestRecentEvents(t *testing.T) {
	bus := NewBus()

	for i := 0; i < 10; i++ {
		_, err := bus.Emit(LevelInfo, ComputeRequested, "", map[string]interface{}{"i": i})
		require.NoError(t, err)
	}

	recent := bus.RecentEvents(5)
	require.Len(t, recent, 5)
	assert.Equal(t, 5, recent[0].Fields["i"])

	assert.Len(t, bus.RecentEvents(100), 10)
	assert.Len(t, bus.RecentEvents(0), 10)
	assert.Equal(t, uint64(10), bus.TotalCount())
}

func TestRingBufferWraps(t *testing.T) {
	bus := NewBus(WithBufferSize(3))
	for i := 0; i < 5; i++ {
		_, _ = bus.Emit(LevelInfo, AnswerChecked, "", map[string]interface{}{"i": i})
	}
	snap := bus.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, 2, snap[0].Fields["i"])
	assert.Equal(t, 4, snap[2].Fields["i"])
}

func TestCloseAllSubscribers(t *testing.T) {
	bus := NewBus()
	sub1 := bus.Subscribe()
	sub2 := bus.Subscribe()

	bus.CloseAllSubscribers()

	_, ok1 := <-sub1
	_, ok2 := <-sub2
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.Zero(t, bus.SubscriberCount())
}

type recordingSink struct {
	sessions []string
	names    []string
	err      error
}

func (s *recordingSink) Append(_ time.Time, _, event, _ string, _ map[string]interface{}, sessionID string) error {
	s.names = append(s.names, event)
	s.sessions = append(s.sessions, sessionID)
	return s.err
}

func TestSinkReceivesEvents(t *testing.T) {
	bus := NewBus()
	sink := &recordingSink{}
	bus.SetSink(sink)

	_, err := bus.Emit(LevelInfo, AnswerChecked, "", map[string]interface{}{"session_id": "abc"})
	require.NoError(t, err)

	assert.Equal(t, []string{AnswerChecked}, sink.names)
	assert.Equal(t, []string{"abc"}, sink.sessions)
}

func TestSinkFailureReportedOnce(t *testing.T) {
	bus := NewBus()
	bus.SetSink(&recordingSink{err: errors.New("db down")})

	for i := 0; i < 3; i++ {
		_, err := bus.Emit(LevelInfo, ComputeRequested, "", nil)
		require.NoError(t, err)
	}

	errorsSeen := 0
	for _, e := range bus.Snapshot() {
		if e.Name == SystemError {
			errorsSeen++
		}
	}
	assert.Equal(t, 1, errorsSeen)
	assert.Equal(t, uint64(3), bus.TotalCount())
}
