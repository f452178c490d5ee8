package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

// Topic suffixes under the configured prefix.
const (
	TopicSelect = "select"
	TopicEvents = "events"
	TopicStars  = "stars"
)

// Broker is the part of Client the bridge needs.
type Broker interface {
	Subscribe(topic string, handler paho.MessageHandler) error
	Publish(topic string, payload []byte, retained bool) error
	IsConnected() bool
}

// Selector switches the active day.
type Selector interface {
	SelectPuzzle(ctx context.Context, id puzzle.ID) error
}

// Bridge relays selections from MQTT into the runtime and engine events
// back out to MQTT.
type Bridge struct {
	broker   Broker
	selector Selector
	bus      *events.Bus
	prefix   string
	logger   *slog.Logger

	mu         sync.Mutex
	subscribed map[string]bool
}

// NewBridge creates a bridge publishing under prefix.
func NewBridge(broker Broker, selector Selector, bus *events.Bus, prefix string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		broker:     broker,
		selector:   selector,
		bus:        bus,
		prefix:     strings.TrimSuffix(prefix, "/"),
		logger:     logger,
		subscribed: make(map[string]bool),
	}
}

// Topic joins suffix onto the bridge prefix.
func (b *Bridge) Topic(suffix string) string {
	return b.prefix + "/" + suffix
}

// Subscribe registers the select handler. It is idempotent; call
// ClearSubscriptions after a disconnect to allow re-subscribing.
func (b *Bridge) Subscribe() error {
	topic := b.Topic(TopicSelect)

	b.mu.Lock()
	if b.subscribed[topic] {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	if err := b.broker.Subscribe(topic, b.handleSelect); err != nil {
		return err
	}

	b.mu.Lock()
	b.subscribed[topic] = true
	b.mu.Unlock()
	return nil
}

// IsSubscribed returns true if the topic is already subscribed.
func (b *Bridge) IsSubscribed(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribed[topic]
}

// ClearSubscriptions forgets subscription state.
func (b *Bridge) ClearSubscriptions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.subscribed)
}

// ParseSelect reads a select payload: either a bare day number or
// {"day":N}. 0 deselects.
func ParseSelect(payload []byte) (puzzle.ID, error) {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		var msg struct {
			Day *int `json:"day"`
		}
		if err := json.Unmarshal([]byte(text), &msg); err != nil {
			return puzzle.None, fmt.Errorf("invalid select payload: %w", err)
		}
		if msg.Day == nil {
			return puzzle.None, fmt.Errorf("invalid select payload: day required")
		}
		if *msg.Day < 0 || *msg.Day > puzzle.Count {
			return puzzle.None, fmt.Errorf("invalid day %d: must be between 0 and %d", *msg.Day, puzzle.Count)
		}
		return puzzle.ID(*msg.Day), nil
	}
	return puzzle.Parse(text)
}

func (b *Bridge) handleSelect(_ paho.Client, msg paho.Message) {
	id, err := ParseSelect(msg.Payload())
	if err != nil {
		b.logger.Warn("mqtt select ignored",
			slog.String("topic", msg.Topic()),
			slog.String("payload", string(msg.Payload())),
			slog.Any("err", err))
		return
	}

	if _, err := b.bus.Emit(events.LevelInfo, events.OperatorSelect, "", map[string]interface{}{
		"day":    int(id),
		"source": "mqtt",
	}); err != nil {
		b.logger.Error("emit failed", slog.Any("err", err))
	}

	// Load failures are already reported on the bus.
	if err := b.selector.SelectPuzzle(context.Background(), id); err != nil {
		b.logger.Warn("mqtt select failed", slog.Int("day", int(id)), slog.Any("err", err))
	}
}

// Run republishes bus events until ctx is done. Every event goes to
// <prefix>/events; the star count is also kept retained at <prefix>/stars.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.bus.Subscribe()
	defer b.bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			b.publish(e)
		}
	}
}

func (b *Bridge) publish(e events.Event) {
	if !b.broker.IsConnected() {
		return
	}

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := b.broker.Publish(b.Topic(TopicEvents), data, false); err != nil {
		b.logger.Debug("mqtt publish failed", slog.String("event", e.Name), slog.Any("err", err))
		return
	}

	if e.Name == events.ProgressUpdated {
		if stars, ok := e.Fields["stars"]; ok {
			if err := b.broker.Publish(b.Topic(TopicStars), []byte(fmt.Sprint(stars)), true); err != nil {
				b.logger.Debug("mqtt publish failed", slog.String("topic", TopicStars), slog.Any("err", err))
			}
		}
	}
}
