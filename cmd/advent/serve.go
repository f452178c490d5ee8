package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AaronLay10/AdventEngine/internal/api"
	"github.com/AaronLay10/AdventEngine/internal/events"
	"github.com/AaronLay10/AdventEngine/internal/mqtt"
	"github.com/AaronLay10/AdventEngine/internal/orchestrator"
)

const (
	healthInterval = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the step loop with the HTTP API and optional MQTT bridge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := openEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer e.Close()

		return serve(ctx, e)
	},
}

// restore replays the postgres event log so the day that was active at
// the last shutdown becomes active again.
func (e *engine) restore(ctx context.Context) {
	if e.pg == nil {
		e.rt.EmitStartupRestore(0, nil)
		return
	}

	state, n, err := orchestrator.RestoreFromEvents(e.pg, orchestrator.DefaultRestoreLimit)
	if err != nil {
		e.logger.Warn("event restore failed", slog.Any("err", err))
		e.rt.EmitStartupRestore(0, nil)
		return
	}
	e.rt.EmitStartupRestore(n, state)
	if err := e.rt.ApplyRestoredState(ctx, state); err != nil {
		e.logger.Warn("resume failed", slog.Any("err", err))
	}
}

func serve(ctx context.Context, e *engine) error {
	auth, err := api.AuthFromEnv()
	if err != nil {
		return err
	}
	if !auth.Enabled() {
		e.logger.Warn("api authentication disabled: set " + api.EnvAdminUser + " and " + api.EnvAdminPass)
	}

	srv := api.NewServer(api.Options{
		Runtime:  e.rt,
		Bus:      e.bus,
		Progress: e.store,
		Logger:   e.logger,
		Registry: e.registry,
		Gatherer: e.registry,
		Auth:     auth,
		TLS:      api.TLSFromEnv(),
	})

	e.restore(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := e.rt.Run(gctx, e.cfg.StepRate())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, e.cfg.APIPort())
	})

	alerter := api.NewAlerter(api.AlertConfigFromEnv(), e.logger)
	g.Go(func() error {
		alerter.ForwardErrors(gctx, e.bus)
		return nil
	})
	g.Go(func() error {
		alerter.Monitor(gctx, srv.Readiness(), healthInterval)
		return nil
	})

	if e.pg != nil {
		srv.Readiness().SetPostgres(true, true)
		g.Go(func() error {
			watchPostgres(gctx, e, srv.Readiness())
			return nil
		})
	}

	if e.cfg.MQTT.Enabled {
		client := mqtt.NewClient(mqtt.Options{
			URL:      e.cfg.MQTT.URL,
			ClientID: e.cfg.MQTTClientID(),
			Username: e.cfg.MQTT.Username,
			Password: e.cfg.MQTT.Password,
		})
		defer client.Disconnect()
		client.ConnectAndLog(e.logger)

		bridge := mqtt.NewBridge(client, e.rt, e.bus, e.cfg.MQTTTopicPrefix(), e.logger)
		srv.Readiness().SetMQTT(true, false)
		monitor := mqtt.NewMonitor(client, bridge, e.logger, func(up bool) {
			srv.Readiness().SetMQTT(true, up)
		})

		g.Go(func() error {
			bridge.Run(gctx)
			return nil
		})
		g.Go(func() error {
			monitor.Run(gctx, healthInterval)
			return nil
		})
	}

	err = g.Wait()

	_, _ = e.bus.Emit(events.LevelInfo, events.SystemShutdown, "", nil)
	alerter.Wait()
	return err
}

func watchPostgres(ctx context.Context, e *engine, r *api.Readiness) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := e.pg.Ping(pctx)
			cancel()
			r.SetPostgres(true, err == nil)
		}
	}
}
