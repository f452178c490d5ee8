package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/AaronLay10/AdventEngine/internal/events"
)

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert event types
const (
	AlertMQTTDisconnected    = "mqtt_disconnected"
	AlertPostgresUnavailable = "postgres_unavailable"
	AlertEngineError         = "engine_error"
)

const (
	EnvAlertWebhook       = "ADVENT_ALERT_WEBHOOK_URL"
	EnvMQTTAlertDelay     = "ADVENT_MQTT_ALERT_DELAY"
	EnvPostgresAlertDelay = "ADVENT_POSTGRES_ALERT_DELAY"
)

// AlertPayload is the JSON structure sent to the webhook.
type AlertPayload struct {
	Instance  string                 `json:"instance"`
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AlertConfig holds alert configuration.
type AlertConfig struct {
	WebhookURL              string
	MQTTDisconnectDelay     time.Duration
	PostgresDisconnectDelay time.Duration
}

// AlertConfigFromEnv reads the webhook and optional delays.
func AlertConfigFromEnv() AlertConfig {
	cfg := AlertConfig{
		WebhookURL:              os.Getenv(EnvAlertWebhook),
		MQTTDisconnectDelay:     30 * time.Second,
		PostgresDisconnectDelay: 5 * time.Second,
	}
	if d, err := time.ParseDuration(os.Getenv(EnvMQTTAlertDelay)); err == nil {
		cfg.MQTTDisconnectDelay = d
	}
	if d, err := time.ParseDuration(os.Getenv(EnvPostgresAlertDelay)); err == nil {
		cfg.PostgresDisconnectDelay = d
	}
	return cfg
}

// linkState debounces one dependency: it alerts once after the link has
// been down for delay, and once more on recovery.
type linkState struct {
	up        bool
	downSince time.Time
	alerted   bool
}

// Alerter posts alerts to a webhook, or logs them when none is set.
type Alerter struct {
	cfg      AlertConfig
	logger   *slog.Logger
	client   *http.Client
	instance string

	mu       sync.Mutex
	mqtt     linkState
	postgres linkState
	wg       sync.WaitGroup
}

// NewAlerter creates an alerter. Both links start as up.
func NewAlerter(cfg AlertConfig, logger *slog.Logger) *Alerter {
	if logger == nil {
		logger = slog.Default()
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	return &Alerter{
		cfg:      cfg,
		logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
		instance: host,
		mqtt:     linkState{up: true},
		postgres: linkState{up: true},
	}
}

// Send delivers an alert in the background.
func (a *Alerter) Send(event, severity, message string, details map[string]interface{}) {
	if a.cfg.WebhookURL == "" {
		a.logger.Warn("alert",
			slog.String("event", event),
			slog.String("severity", severity),
			slog.String("msg", message),
			slog.Any("details", details))
		return
	}

	payload := AlertPayload{
		Instance:  a.instance,
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  severity,
		Message:   message,
		Details:   details,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.post(payload)
	}()
}

// Wait blocks until in-flight webhook posts finish.
func (a *Alerter) Wait() {
	a.wg.Wait()
}

func (a *Alerter) post(payload AlertPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("alert marshal failed", slog.Any("err", err))
		return
	}

	resp, err := a.client.Post(a.cfg.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		a.logger.Warn("alert webhook POST failed", slog.Any("err", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		a.logger.Warn("alert webhook rejected", slog.Int("status", resp.StatusCode))
	}
}

// CheckMQTT records the MQTT link state and alerts when it stays down.
func (a *Alerter) CheckMQTT(connected bool, now time.Time) {
	a.check(&a.mqtt, connected, now, a.cfg.MQTTDisconnectDelay,
		AlertMQTTDisconnected, SeverityWarning, "MQTT broker")
}

// CheckPostgres records the Postgres state and alerts when it stays down.
func (a *Alerter) CheckPostgres(connected bool, now time.Time) {
	a.check(&a.postgres, connected, now, a.cfg.PostgresDisconnectDelay,
		AlertPostgresUnavailable, SeverityCritical, "PostgreSQL")
}

func (a *Alerter) check(ls *linkState, connected bool, now time.Time, delay time.Duration, event, severity, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if connected {
		if ls.alerted {
			a.Send(event, SeverityInfo, name+" connection restored", map[string]interface{}{
				"recovered_at": now.UTC().Format(time.RFC3339),
			})
		}
		*ls = linkState{up: true}
		return
	}

	if ls.up {
		ls.downSince = now
		ls.up = false
	}

	if !ls.alerted && now.Sub(ls.downSince) >= delay {
		ls.alerted = true
		a.Send(event, severity, name+" unavailable", map[string]interface{}{
			"disconnected_since":   ls.downSince.UTC().Format(time.RFC3339),
			"disconnected_seconds": int(now.Sub(ls.downSince).Seconds()),
		})
	}
}

// Monitor polls readiness every interval until ctx is done.
func (a *Alerter) Monitor(ctx context.Context, r *Readiness, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.CheckMQTT(r.MQTTConnected(), now)
			a.CheckPostgres(r.PostgresHealthy(), now)
		}
	}
}

// ForwardErrors turns every error-level bus event into an alert until
// ctx is done or the subscription closes.
func (a *Alerter) ForwardErrors(ctx context.Context, bus *events.Bus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if e.Level != events.LevelError {
				continue
			}
			a.Send(AlertEngineError, SeverityWarning, e.Name, e.Fields)
		}
	}
}
