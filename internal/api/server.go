// Package api serves the engine over HTTP: health and readiness probes,
// the event log, lifecycle state and selection, progress, a live
// WebSocket event stream and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/progress"
	"github.com/AaronLay10/AdventEngine/internal/puzzle"
	"github.com/AaronLay10/AdventEngine/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Options wires the server to the engine.
type Options struct {
	Runtime  *orchestrator.Runtime
	Bus      *events.Bus
	Progress *progress.Store
	Logger   *slog.Logger

	// Registry receives the server's own collectors; Gatherer serves
	// /metrics. Both default to a fresh registry.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer

	Auth *Auth
	TLS  *TLSFiles
}

// Server is the HTTP surface of the engine.
type Server struct {
	rt       *orchestrator.Runtime
	bus      *events.Bus
	progress *progress.Store
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	auth     *Auth
	tls      *TLSFiles

	readiness *Readiness
	startTime time.Time
}

// NewServer creates a server. Runtime and Bus are required.
func NewServer(opts Options) *Server {
	s := &Server{
		rt:        opts.Runtime,
		bus:       opts.Bus,
		progress:  opts.Progress,
		logger:    opts.Logger,
		auth:      opts.Auth,
		tls:       opts.TLS,
		readiness: &Readiness{},
		startTime: time.Now(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	reg, gatherer := opts.Registry, opts.Gatherer
	if reg == nil || gatherer == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	}
	s.gatherer = gatherer
	s.registerCollectors(reg)

	return s
}

// Readiness exposes the dependency flags reported by /ready.
func (s *Server) Readiness() *Readiness {
	return s.readiness
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.uiHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.HandleFunc("/events", s.eventsHandler)
	mux.HandleFunc("/api/state", s.stateHandler)
	mux.HandleFunc("/api/progress", s.progressHandler)
	mux.HandleFunc("/api/select", s.auth.RequireAnyRole(s.selectHandler))
	mux.HandleFunc("/api/submit", s.auth.RequireAdmin(s.submitHandler))
	mux.HandleFunc("/ws", s.wsEventsHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully. TLS is used when certificate files are configured.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tlsCfg, err := s.tls.Load()
	if err != nil {
		return err
	}
	srv.TLSConfig = tlsCfg

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", slog.String("addr", srv.Addr), slog.Bool("tls", tlsCfg != nil))
		if tlsCfg != nil {
			errCh <- srv.ListenAndServeTLS("", "")
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.bus.CloseAllSubscribers()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Version   string `json:"version"`
	Timestamp string `json:"ts"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "advent",
		Hostname:  host,
		Version:   version.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Readiness tracks optional dependencies. A dependency that was never
// enabled does not block readiness.
type Readiness struct {
	mu              sync.RWMutex
	mqttEnabled     bool
	mqttConnected   bool
	postgresEnabled bool
	postgresHealthy bool
}

// SetMQTT records whether the MQTT bridge is enabled and connected.
func (r *Readiness) SetMQTT(enabled, connected bool) {
	r.mu.Lock()
	r.mqttEnabled, r.mqttConnected = enabled, connected
	r.mu.Unlock()
}

// SetPostgres records whether Postgres is in use and reachable.
func (r *Readiness) SetPostgres(enabled, healthy bool) {
	r.mu.Lock()
	r.postgresEnabled, r.postgresHealthy = enabled, healthy
	r.mu.Unlock()
}

// MQTTConnected reports the last MQTT state (true when disabled).
func (r *Readiness) MQTTConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.mqttEnabled || r.mqttConnected
}

// PostgresHealthy reports the last Postgres state (true when disabled).
func (r *Readiness) PostgresHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.postgresEnabled || r.postgresHealthy
}

type CheckResult struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]CheckResult `json:"checks"`
}

func check(enabled, ok bool) CheckResult {
	switch {
	case !enabled:
		return CheckResult{Status: "disabled"}
	case ok:
		return CheckResult{Status: "ok"}
	default:
		return CheckResult{Status: "down"}
	}
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	s.readiness.mu.RLock()
	resp := ReadinessResponse{
		Checks: map[string]CheckResult{
			"mqtt":     check(s.readiness.mqttEnabled, s.readiness.mqttConnected),
			"postgres": check(s.readiness.postgresEnabled, s.readiness.postgresHealthy),
		},
	}
	s.readiness.mu.RUnlock()

	resp.Ready = true
	for _, c := range resp.Checks {
		if c.Status == "down" {
			resp.Ready = false
		}
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bus.Snapshot())
}

type StateResponse struct {
	orchestrator.State
	Solvers []int `json:"solvers"`
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	// Plain ints: a []puzzle.ID would encode as base64.
	days := s.rt.Solvers()
	solvers := make([]int, len(days))
	for i, id := range days {
		solvers[i] = int(id)
	}
	writeJSON(w, http.StatusOK, StateResponse{State: s.rt.State(), Solvers: solvers})
}

type ProgressResponse struct {
	Stars  int             `json:"stars"`
	Seed   string          `json:"seed,omitempty"`
	Record progress.Record `json:"record"`
}

func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	if s.progress == nil {
		writeJSON(w, http.StatusServiceUnavailable, OperatorResponse{Error: "progress store not configured"})
		return
	}
	rec := s.progress.Record()
	resp := ProgressResponse{Stars: rec.Stars(), Record: rec}
	if seed, err := s.progress.Seed(r.Context()); err == nil {
		resp.Seed = strconv.FormatUint(seed, 10)
	} else {
		s.logger.Warn("seed unavailable", slog.Any("err", err))
	}
	writeJSON(w, http.StatusOK, resp)
}

type SelectRequest struct {
	Day *int `json:"day"`
}

type SubmitRequest struct {
	Day   int    `json:"day"`
	Part  int    `json:"part"`
	Value uint64 `json:"value"`
}

type OperatorResponse struct {
	OK      bool                `json:"ok"`
	Error   string              `json:"error,omitempty"`
	State   *orchestrator.State `json:"state,omitempty"`
	Outcome string              `json:"outcome,omitempty"`
}

func (s *Server) selectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, OperatorResponse{Error: "method not allowed"})
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "invalid JSON"})
		return
	}
	if req.Day == nil {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "day required"})
		return
	}
	if *req.Day < 0 || *req.Day > puzzle.Count {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "day must be between 0 and 25"})
		return
	}

	id := puzzle.ID(*req.Day)
	_, _ = s.bus.Emit(events.LevelInfo, events.OperatorSelect, "", map[string]interface{}{
		"day":    int(id),
		"source": "api",
	})

	err := s.rt.SelectPuzzle(r.Context(), id)
	st := s.rt.State()
	switch {
	case errors.Is(err, orchestrator.ErrLoadFailed):
		writeJSON(w, http.StatusUnprocessableEntity, OperatorResponse{Error: err.Error(), State: &st})
	case err != nil:
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: err.Error(), State: &st})
	default:
		writeJSON(w, http.StatusOK, OperatorResponse{OK: true, State: &st})
	}
}

// submitHandler lets an admin hand in an answer for the active day, as a
// solver would.
func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, OperatorResponse{Error: "method not allowed"})
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "invalid JSON"})
		return
	}
	if req.Day < 1 || req.Day > puzzle.Count || req.Part < 1 || req.Part > 2 {
		writeJSON(w, http.StatusBadRequest, OperatorResponse{Error: "day or part out of range"})
		return
	}

	outcome, err := s.rt.Submit(puzzle.Submission{
		ID:    puzzle.ID(req.Day),
		Part:  puzzle.Part(req.Part),
		Value: req.Value,
	})
	switch {
	case errors.Is(err, orchestrator.ErrProtocolViolation):
		writeJSON(w, http.StatusConflict, OperatorResponse{Error: err.Error()})
	case err != nil:
		// The outcome stands; only the progress write failed.
		writeJSON(w, http.StatusOK, OperatorResponse{OK: true, Outcome: outcome.String(), Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, OperatorResponse{OK: true, Outcome: outcome.String()})
	}
}
