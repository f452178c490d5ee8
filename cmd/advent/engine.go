package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AaronLay10/AdventEngine/internal/config"
	"github.com/AaronLay10/AdventEngine/internal/days"
	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/input"
	"github.com/AaronLay10/AdventEngine/internal/ledger"
	"github.com/AaronLay10/AdventEngine/internal/metrics"
	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
	"github.com/AaronLay10/AdventEngine/internal/progress"
	"github.com/AaronLay10/AdventEngine/internal/storage"
	"github.com/AaronLay10/AdventEngine/internal/storage/badger"
	"github.com/AaronLay10/AdventEngine/internal/storage/postgres"
)

// engine is one fully wired runtime with its backing stores.
type engine struct {
	cfg    *config.Config
	logger *slog.Logger

	kv       storage.KV
	pg       *postgres.Client // nil unless the postgres driver is selected
	bus      *events.Bus
	store    *progress.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	rt       *orchestrator.Runtime
}

// openKV opens the configured progress backend.
func openKV(cfg *config.Config, logger *slog.Logger) (storage.KV, *postgres.Client, error) {
	switch cfg.StorageDriver() {
	case config.DriverPostgres:
		pg, err := postgres.New(postgres.Config{
			Host:      cfg.Postgres.Host,
			Port:      cfg.Postgres.Port,
			User:      cfg.Postgres.User,
			Password:  cfg.Postgres.Password,
			DBName:    cfg.Postgres.DBName,
			SSLMode:   cfg.Postgres.SSLMode,
			Namespace: cfg.KeyNamespace(),
		})
		if err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	default:
		bc := badger.DefaultConfig()
		bc.Path = cfg.StoragePath()
		bc.Logger = logger.With(slog.String("component", "badger"))
		kv, err := badger.Open(bc)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil
	}
}

// loadExpectations merges the optional answers file over the embedded
// table.
func loadExpectations(cfg *config.Config) (ledger.Expectations, error) {
	expected, err := ledger.Embedded()
	if err != nil {
		return nil, fmt.Errorf("embedded answers: %w", err)
	}
	if cfg.AnswersFile == "" {
		return expected, nil
	}
	overlay, err := ledger.LoadFile(cfg.AnswersFile)
	if err != nil {
		return nil, fmt.Errorf("answers file %s: %w", cfg.AnswersFile, err)
	}
	return ledger.Merge(expected, overlay), nil
}

func openEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine, error) {
	kv, pg, err := openKV(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	e := &engine{cfg: cfg, logger: logger, kv: kv, pg: pg}
	ok := false
	defer func() {
		if !ok {
			_ = kv.Close()
		}
	}()

	e.bus = events.NewBus(events.WithLogger(logger))
	if pg != nil {
		e.bus.SetSink(pg)
	}

	e.registry = prometheus.NewRegistry()
	e.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e.metrics = metrics.New(e.registry)

	e.store, err = progress.Open(ctx, kv,
		progress.WithNamespace(cfg.KeyNamespace()),
		progress.WithLogger(logger),
		progress.WithNotifier(orchestrator.ProgressNotifier(e.bus, e.metrics)))
	if err != nil {
		return nil, err
	}
	e.metrics.SetStars(e.store.Record().Stars())

	expected, err := loadExpectations(cfg)
	if err != nil {
		return nil, err
	}
	if len(expected) == 0 {
		logger.Warn("no known answers, every submission will be reported unknown",
			slog.String("answers_file", cfg.AnswersFile))
	}

	solvers, err := days.Registry()
	if err != nil {
		return nil, err
	}

	e.rt = orchestrator.NewRuntime(
		input.NewDirProvider(cfg.InputsPath()),
		solvers,
		ledger.New(expected, e.store),
		e.bus,
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(e.metrics),
	)

	ok = true
	return e, nil
}

// Close flushes progress and closes the store. The active day is left as
// is so the event log still shows it active for the next restore.
func (e *engine) Close() error {
	return errors.Join(e.store.Flush(), e.kv.Close())
}
