package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type published struct {
	topic    string
	payload  string
	retained bool
}

// mockBroker records subscriptions and publishes in memory.
type mockBroker struct {
	mu            sync.Mutex
	subscriptions map[string]paho.MessageHandler
	published     []published
	connected     bool
	subscribeErr  error
	subscribeN    int
}

func newMockBroker() *mockBroker {
	return &mockBroker{
		subscriptions: make(map[string]paho.MessageHandler),
		connected:     true,
	}
}

func (m *mockBroker) Subscribe(topic string, handler paho.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeN++
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscriptions[topic] = handler
	return nil
}

func (m *mockBroker) Publish(topic string, payload []byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{topic: topic, payload: string(payload), retained: retained})
	return nil
}

func (m *mockBroker) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockBroker) setConnected(v bool) {
	m.mu.Lock()
	m.connected = v
	m.mu.Unlock()
}

func (m *mockBroker) publishes() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

func (m *mockBroker) SimulateMessage(topic string, payload []byte) {
	m.mu.Lock()
	handler, ok := m.subscriptions[topic]
	m.mu.Unlock()
	if ok {
		handler(nil, &mockMessage{topic: topic, payload: payload})
	}
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 1 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 0 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

type recordingSelector struct {
	mu  sync.Mutex
	ids []puzzle.ID
	err error
}

func (s *recordingSelector) SelectPuzzle(_ context.Context, id puzzle.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return s.err
}

func (s *recordingSelector) selected() []puzzle.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]puzzle.ID(nil), s.ids...)
}

func TestParseSelect(t *testing.T) {
	tests := []struct {
		payload string
		want    puzzle.ID
		wantErr bool
	}{
		{"3", 3, false},
		{" 25\n", 25, false},
		{"0", 0, false},
		{`{"day":7}`, 7, false},
		{`{"day":0}`, 0, false},
		{"26", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{`{"day":300}`, 0, true},
		{`{}`, 0, true},
		{`{"day":`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseSelect([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBridgeSelect(t *testing.T) {
	broker := newMockBroker()
	sel := &recordingSelector{}
	bus := events.NewBus()
	b := NewBridge(broker, sel, bus, "advent/home/", quiet)

	require.NoError(t, b.Subscribe())
	topic := "advent/home/select"
	assert.True(t, b.IsSubscribed(topic))

	broker.SimulateMessage(topic, []byte("4"))
	broker.SimulateMessage(topic, []byte("junk"))
	broker.SimulateMessage(topic, []byte(`{"day":0}`))

	assert.Equal(t, []puzzle.ID{4, 0}, sel.selected())

	var sources []interface{}
	for _, e := range bus.Snapshot() {
		if e.Name == events.OperatorSelect {
			sources = append(sources, e.Fields["source"])
		}
	}
	assert.Equal(t, []interface{}{"mqtt", "mqtt"}, sources)
}

func TestBridgeSelectErrorIsLogged(t *testing.T) {
	broker := newMockBroker()
	sel := &recordingSelector{err: errors.New("load failed")}
	b := NewBridge(broker, sel, events.NewBus(), "advent", quiet)
	require.NoError(t, b.Subscribe())

	broker.SimulateMessage("advent/select", []byte("2"))
	assert.Equal(t, []puzzle.ID{2}, sel.selected())
}

func TestBridgeSubscribeIdempotent(t *testing.T) {
	broker := newMockBroker()
	b := NewBridge(broker, &recordingSelector{}, events.NewBus(), "advent", quiet)

	require.NoError(t, b.Subscribe())
	require.NoError(t, b.Subscribe())
	assert.Equal(t, 1, broker.subscribeN)

	b.ClearSubscriptions()
	assert.False(t, b.IsSubscribed("advent/select"))
	require.NoError(t, b.Subscribe())
	assert.Equal(t, 2, broker.subscribeN)
}

func TestBridgeSubscribeFailureNotRecorded(t *testing.T) {
	broker := newMockBroker()
	broker.subscribeErr = &TimeoutError{Op: "subscribe", Topic: "advent/select"}
	b := NewBridge(broker, &recordingSelector{}, events.NewBus(), "advent", quiet)

	err := b.Subscribe()
	assert.ErrorContains(t, err, "subscribe timeout")
	assert.False(t, b.IsSubscribed("advent/select"))
}

func TestBridgeRunPublishesEvents(t *testing.T) {
	broker := newMockBroker()
	bus := events.NewBus()
	b := NewBridge(broker, &recordingSelector{}, bus, "advent", quiet)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err := bus.Emit(events.LevelInfo, events.PuzzleActivated, "", map[string]interface{}{"day": 3})
	require.NoError(t, err)
	_, err = bus.Emit(events.LevelInfo, events.ProgressUpdated, "", map[string]interface{}{"day": 3, "part": 1, "stars": 5})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(broker.publishes()) == 3 }, time.Second, 10*time.Millisecond)
	got := broker.publishes()
	assert.Equal(t, "advent/events", got[0].topic)
	assert.Contains(t, got[0].payload, `"event":"puzzle.activated"`)
	assert.Equal(t, published{topic: "advent/stars", payload: "5", retained: true}, got[2])

	cancel()
	<-done
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestBridgeSkipsPublishWhenDisconnected(t *testing.T) {
	broker := newMockBroker()
	broker.setConnected(false)
	b := NewBridge(broker, &recordingSelector{}, events.NewBus(), "advent", quiet)

	b.publish(events.Event{Name: events.PuzzleActivated})
	assert.Empty(t, broker.publishes())
}
