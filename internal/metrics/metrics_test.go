package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/AaronLay10/AdventEngine/internal/puzzle"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Selection(SelectionActivated)
	m.Selection(SelectionActivated)
	m.Selection(SelectionLoadFailed)
	m.Outcome(3, puzzle.Part1, puzzle.Correct)
	m.Violation()
	m.SetActive(3)
	m.SetStars(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.selections.WithLabelValues(SelectionActivated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selections.WithLabelValues(SelectionLoadFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("3", "part1", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violations))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.active))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.stars))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Selection(SelectionIdle)
	m.Outcome(1, puzzle.Part2, puzzle.TooLow)
	m.Violation()
	m.Step()
	m.SetActive(0)
	m.SetStars(0)
}
