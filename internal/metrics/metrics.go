// Package metrics exposes engine counters in Prometheus format.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

// Selection results.
const (
	SelectionActivated  = "activated"
	SelectionIdle       = "idle"
	SelectionLoadFailed = "load_failed"
	SelectionInvalid    = "invalid"
)

// Metrics holds the engine's collectors.
type Metrics struct {
	selections *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	violations prometheus.Counter
	steps      prometheus.Counter
	active     prometheus.Gauge
	stars      prometheus.Gauge
}

// New registers the engine collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advent",
			Name:      "selections_total",
			Help:      "Puzzle selections by result.",
		}, []string{"result"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advent",
			Name:      "answers_checked_total",
			Help:      "Verified submissions by day, part and outcome.",
		}, []string{"day", "part", "outcome"}),
		violations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "advent",
			Name:      "protocol_violations_total",
			Help:      "Submissions discarded as protocol violations.",
		}),
		steps: f.NewCounter(prometheus.CounterOpts{
			Namespace: "advent",
			Name:      "compute_steps_total",
			Help:      "Solver capsule steps executed.",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "advent",
			Name:      "active_day",
			Help:      "Currently active day, 0 when idle.",
		}),
		stars: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "advent",
			Name:      "stars",
			Help:      "Completed parts across the calendar.",
		}),
	}
}

func (m *Metrics) Selection(result string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(result).Inc()
}

func (m *Metrics) Outcome(id puzzle.ID, part puzzle.Part, o puzzle.Outcome) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(strconv.Itoa(int(id)), part.String(), o.String()).Inc()
}

func (m *Metrics) Violation() {
	if m == nil {
		return
	}
	m.violations.Inc()
}

func (m *Metrics) Step() {
	if m == nil {
		return
	}
	m.steps.Inc()
}

func (m *Metrics) SetActive(id puzzle.ID) {
	if m == nil {
		return
	}
	m.active.Set(float64(id))
}

func (m *Metrics) SetStars(n int) {
	if m == nil {
		return
	}
	m.stars.Set(float64(n))
}
