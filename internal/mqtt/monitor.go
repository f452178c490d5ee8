package mqtt

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Monitor watches the broker connection. On every reconnect it re-runs
// the bridge subscriptions, and it reports each state change.
type Monitor struct {
	broker   Broker
	bridge   *Bridge
	logger   *slog.Logger
	onChange func(connected bool)

	mu        sync.Mutex
	connected bool
	lastSeen  time.Time
}

// NewMonitor creates a monitor. onChange may be nil.
func NewMonitor(broker Broker, bridge *Bridge, logger *slog.Logger, onChange func(connected bool)) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		broker:   broker,
		bridge:   bridge,
		logger:   logger,
		onChange: onChange,
	}
}

// Run checks the connection every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.Check(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Check(now)
		}
	}
}

// Check samples the connection once.
func (m *Monitor) Check(now time.Time) {
	up := m.broker.IsConnected()

	m.mu.Lock()
	changed := up != m.connected
	m.connected = up
	if up {
		m.lastSeen = now
	}
	m.mu.Unlock()

	if up {
		// Subscribe is idempotent, so this also retries a failed attempt.
		if err := m.bridge.Subscribe(); err != nil {
			m.logger.Warn("mqtt subscribe failed", slog.Any("err", err))
		}
	}

	if !changed {
		return
	}
	if up {
		m.logger.Info("mqtt connection up")
	} else {
		m.logger.Warn("mqtt connection lost")
		m.bridge.ClearSubscriptions()
	}
	if m.onChange != nil {
		m.onChange(up)
	}
}

// Connected reports the last sampled state.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// LastSeen returns when the connection was last observed up.
func (m *Monitor) LastSeen() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSeen
}
