package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/db"
	"github.com/thatsimonsguy/airzone-cloud/internal/api"
	"github.com/thatsimonsguy/airzone-cloud/internal/config"
	"github.com/thatsimonsguy/airzone-cloud/internal/datadog"
	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/env"
	"github.com/thatsimonsguy/airzone-cloud/internal/logging"
	"github.com/thatsimonsguy/airzone-cloud/internal/metrics"
	"github.com/thatsimonsguy/airzone-cloud/internal/mqtt"
	"github.com/thatsimonsguy/airzone-cloud/internal/notifications"
	"github.com/thatsimonsguy/airzone-cloud/internal/replay"
	"github.com/thatsimonsguy/airzone-cloud/internal/state"
	"github.com/thatsimonsguy/airzone-cloud/internal/store"
	"github.com/thatsimonsguy/airzone-cloud/system/shutdown"
	"github.com/thatsimonsguy/airzone-cloud/system/startup"
)

func main() {
	cfg := config.Load()
	if err := startup.PrepareDataDirs(&cfg); err != nil {
		panic(err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFile)

	env.Cfg = &cfg
	env.Catalog = state.NewCatalog()

	log.Info().
		Str("capture", cfg.CaptureFile).
		Str("db", cfg.DBPath).
		Int("interval_seconds", cfg.ReplayIntervalSeconds).
		Msg("Starting Airzone Cloud replay")

	capture, err := store.LoadCapture(cfg.CaptureFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load capture")
	}
	if err := startup.CheckCapture(capture); err != nil {
		log.Fatal().Err(err).Msg("Refusing to replay capture")
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open snapshot database")
	}
	shutdown.OnShutdown(func() { dbConn.Close() })

	datadog.InitMetrics()
	notifications.Init()
	watcher := notifications.NewProblemWatcher()

	publisher := connectMQTT()

	var snapshots *store.Store
	if cfg.SnapshotFile != "" {
		snapshots = store.New(cfg.SnapshotFile)
	}

	if cfg.APIPort > 0 {
		server := api.NewServer(env.Catalog, dbConn, metrics.Registry(env.Catalog))
		go func() {
			if err := server.Start(cfg.APIPort); err != nil {
				shutdown.ShutdownWithError(err, "REST API server stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.ReplayIntervalSeconds) * time.Second
	err = replay.Run(ctx, env.Catalog, capture, interval, func(cycle int, stats replay.Stats) {
		persist(dbConn, snapshots, publisher, watcher, stats)
	})
	if err != nil {
		log.Info().Err(err).Msg("Replay interrupted")
		shutdown.Shutdown()
	}

	log.Info().Int("devices", env.Catalog.Len()).Msg("Capture replay complete")
	if cfg.APIPort > 0 {
		<-ctx.Done()
	}
	shutdown.Shutdown()
}

func connectMQTT() *mqtt.Publisher {
	if env.Cfg.MQTT.Broker == "" {
		log.Info().Msg("MQTT broker not configured - publishing disabled")
		return nil
	}

	publisher, err := mqtt.Connect(env.Cfg.MQTT)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to MQTT broker - publishing disabled")
		return nil
	}
	shutdown.OnShutdown(publisher.Close)

	err = publisher.SubscribeModeCommands(func(id string, value any) {
		if err := env.Catalog.SetParam(id, device.APIMode, map[string]any{device.APIValue: value}); err != nil {
			log.Warn().Err(err).Str("device", id).Msg("Ignoring MQTT mode command")
		}
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to subscribe to MQTT mode commands")
	}
	return publisher
}

func persist(dbConn *sql.DB, snapshots *store.Store, publisher *mqtt.Publisher, watcher *notifications.ProblemWatcher, stats replay.Stats) {
	snaps := env.Catalog.Snapshots()

	if err := db.SaveSnapshots(dbConn, snaps, time.Now()); err != nil {
		log.Error().Err(err).Msg("Failed to save snapshots")
	}
	for _, id := range stats.Removed {
		watcher.Forget(id)
		if err := db.DeleteSnapshot(dbConn, id); err != nil {
			log.Error().Err(err).Str("device", id).Msg("Failed to delete snapshot")
		}
	}
	if snapshots != nil {
		if err := snapshots.Save(snaps); err != nil {
			log.Error().Err(err).Msg("Failed to write snapshot file")
		}
	}

	for _, snap := range snaps {
		datadog.ReportSnapshot(snap)
		watcher.Observe(snap)
	}
	if publisher != nil {
		publisher.PublishAll(snaps)
	}
}
