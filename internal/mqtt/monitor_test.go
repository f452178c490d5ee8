package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AaronLay10/AdventEngine/internal/events"
)

func TestMonitorResubscribesAfterReconnect(t *testing.T) {
	broker := newMockBroker()
	b := NewBridge(broker, &recordingSelector{}, events.NewBus(), "advent", quiet)

	var changes []bool
	m := NewMonitor(broker, b, quiet, func(up bool) { changes = append(changes, up) })

	t0 := time.Now()
	m.Check(t0)
	assert.True(t, m.Connected())
	assert.True(t, b.IsSubscribed("advent/select"))
	assert.Equal(t, t0, m.LastSeen())

	m.Check(t0.Add(time.Second))
	assert.Equal(t, 1, broker.subscribeN, "steady state does not resubscribe")

	broker.setConnected(false)
	m.Check(t0.Add(2 * time.Second))
	assert.False(t, m.Connected())
	assert.False(t, b.IsSubscribed("advent/select"))
	assert.Equal(t, t0.Add(time.Second), m.LastSeen())

	broker.setConnected(true)
	m.Check(t0.Add(3 * time.Second))
	assert.True(t, b.IsSubscribed("advent/select"))
	assert.Equal(t, 2, broker.subscribeN)

	assert.Equal(t, []bool{true, false, true}, changes)
}

func TestMonitorRetriesFailedSubscribe(t *testing.T) {
	broker := newMockBroker()
	broker.subscribeErr = &TimeoutError{Op: "subscribe", Topic: "advent/select"}
	b := NewBridge(broker, &recordingSelector{}, events.NewBus(), "advent", quiet)
	m := NewMonitor(broker, b, quiet, nil)

	m.Check(time.Now())
	assert.False(t, b.IsSubscribed("advent/select"))

	broker.mu.Lock()
	broker.subscribeErr = nil
	broker.mu.Unlock()

	m.Check(time.Now())
	assert.True(t, b.IsSubscribed("advent/select"))
}

func TestTimeoutErrors(t *testing.T) {
	assert.Equal(t, "mqtt connect timeout", (&ConnectTimeoutError{}).Error())
	assert.Equal(t, "mqtt publish timeout: a/b", (&TimeoutError{Op: "publish", Topic: "a/b"}).Error())
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{ClientID: "test"})
	assert.Equal(t, DefaultBrokerURL, c.URL())
	assert.False(t, c.IsConnected())
}
