package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/input"
	"github.com/AaronLay10/AdventEngine/internal/ledger"
	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/progress"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
	"github.com/AaronLay10/AdventEngine/internal/storage/badger"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// sumSolver answers part 1 with the byte length and part 2 with twice it.
type sumSolver struct{ day puzzle.ID }

func (s sumSolver) Day() puzzle.ID { return s.day }

func (s sumSolver) Begin(raw string) (orchestrator.Task, error) {
	n := uint64(len(raw))
	return orchestrator.Sequential(s.day,
		func() uint64 { return n },
		func() uint64 { return 2 * n }), nil
}

type testEnv struct {
	srv   *Server
	rt    *orchestrator.Runtime
	bus   *events.Bus
	store *progress.Store
	reg   *prometheus.Registry
}

func newTestEnv(t *testing.T, auth *Auth) *testEnv {
	t.Helper()

	kv, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	bus := events.NewBus()
	store, err := progress.Open(context.Background(), kv,
		progress.WithLogger(quiet),
		progress.WithNotifier(orchestrator.ProgressNotifier(bus, nil)))
	require.NoError(t, err)

	solvers, err := orchestrator.NewRegistry(sumSolver{day: 1})
	require.NoError(t, err)

	inputs := input.MapProvider{1: "abcd", 5: "xyz"}
	expected := ledger.Expectations{
		{ID: 1, Part: puzzle.Part1}: 4,
		{ID: 1, Part: puzzle.Part2}: 8,
		{ID: 5, Part: puzzle.Part1}: 10,
	}
	rt := orchestrator.NewRuntime(inputs, solvers, ledger.New(expected, store), bus,
		orchestrator.WithLogger(quiet))

	reg := prometheus.NewRegistry()
	srv := NewServer(Options{
		Runtime:  rt,
		Bus:      bus,
		Progress: store,
		Logger:   quiet,
		Registry: reg,
		Gatherer: reg,
		Auth:     auth,
	})
	return &testEnv{srv: srv, rt: rt, bus: bus, store: store, reg: reg}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "advent", resp.Service)
	assert.NotEmpty(t, resp.Version)
	_, err := time.Parse(time.RFC3339Nano, resp.Timestamp)
	assert.NoError(t, err)
}

func TestReadyReflectsDependencies(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[ReadinessResponse](t, w)
	assert.True(t, resp.Ready)
	assert.Equal(t, "disabled", resp.Checks["mqtt"].Status)

	env.srv.Readiness().SetMQTT(true, false)
	w = env.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp = decode[ReadinessResponse](t, w)
	assert.False(t, resp.Ready)
	assert.Equal(t, "down", resp.Checks["mqtt"].Status)

	env.srv.Readiness().SetMQTT(true, true)
	env.srv.Readiness().SetPostgres(true, true)
	w = env.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decode[ReadinessResponse](t, w)
	assert.Equal(t, "ok", resp.Checks["postgres"].Status)
}

func TestSelectAndState(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/select", `{"day":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[OperatorResponse](t, w)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.State)
	assert.True(t, resp.State.IsActive())
	assert.Equal(t, puzzle.ID(1), resp.State.ID)

	w = env.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"solvers":[1]`)
	st := decode[StateResponse](t, w)
	assert.Equal(t, orchestrator.PhaseActive, st.Phase)
	assert.True(t, st.Computing)

	_, err := env.rt.Settle(context.Background(), 10)
	require.NoError(t, err)

	w = env.do(t, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	prog := decode[ProgressResponse](t, w)
	assert.Equal(t, 2, prog.Stars)
	assert.True(t, prog.Record.Done(1, puzzle.Part2))
	assert.NotEmpty(t, prog.Seed)

	w = env.do(t, http.MethodPost, "/api/select", `{"day":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.rt.State().IsActive())
}

func TestSelectEmitsOperatorEvent(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodPost, "/api/select", `{"day":1}`)

	var found bool
	for _, e := range env.bus.Snapshot() {
		if e.Name == events.OperatorSelect {
			found = true
			assert.Equal(t, "api", e.Fields["source"])
		}
	}
	assert.True(t, found)
}

func TestSelectValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, `{`, http.StatusBadRequest},
		{"missing day", http.MethodPost, `{}`, http.StatusBadRequest},
		{"negative", http.MethodPost, `{"day":-1}`, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"day":26}`, http.StatusBadRequest},
		{"wraps uint8", http.MethodPost, `{"day":257}`, http.StatusBadRequest},
		{"no input", http.MethodPost, `{"day":9}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, "/api/select", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.False(t, env.rt.State().IsActive())
		})
	}
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/submit", `{"day":5,"part":1,"value":10}`)
	assert.Equal(t, http.StatusConflict, w.Code, "nothing active yet")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/select", `{"day":5}`).Code)

	w = env.do(t, http.MethodPost, "/api/submit", `{"day":5,"part":1,"value":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, puzzle.TooLow.String(), decode[OperatorResponse](t, w).Outcome)

	w = env.do(t, http.MethodPost, "/api/submit", `{"day":5,"part":1,"value":10}`)
	assert.Equal(t, http.StatusConflict, w.Code, "duplicate part")

	w = env.do(t, http.MethodPost, "/api/submit", `{"day":5,"part":3,"value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/submit", `{"day":2,"part":2,"value":1}`)
	assert.Equal(t, http.StatusConflict, w.Code, "inactive day")
}

func TestEventsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/select", `{"day":5}`)

	w := env.do(t, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	evs := decode[[]events.Event](t, w)
	require.NotEmpty(t, evs)

	names := make([]string, 0, len(evs))
	for _, e := range evs {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, events.PuzzleActivated)
	assert.Contains(t, names, events.ComputeRequested)
}

func TestUI(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Advent Engine")

	w = env.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/select", `{"day":5}`)

	w := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "advent_uptime_seconds")
	assert.Contains(t, body, "advent_events_total")
	assert.Contains(t, body, "advent_ws_clients 0")
	assert.Contains(t, body, "advent_mqtt_connected 1")
}

func TestSelectRequiresRoleWhenAuthEnabled(t *testing.T) {
	env := newTestEnv(t, NewAuth("admin", "secret", "op", "opsecret"))

	req := httptest.NewRequest(http.MethodPost, "/api/select", bytes.NewBufferString(`{"day":5}`))
	w := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/select", bytes.NewBufferString(`{"day":5}`))
	req.SetBasicAuth("op", "opsecret")
	w = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewBufferString(`{"day":5,"part":1,"value":10}`))
	req.SetBasicAuth("op", "opsecret")
	w = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code, "submit is admin only")

	w = env.do(t, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open")
}

func TestListenAndServeShutsDown(t *testing.T) {
	env := newTestEnv(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.srv.ListenAndServe(ctx, 0) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
