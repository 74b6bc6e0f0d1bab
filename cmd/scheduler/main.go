// The scheduler binary runs the polling loop that launches enabled tasks on
// their configured intervals. Job exclusion comes from the controller's
// already-running guard.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	appcfg "disinfowatch/internal/config"
	"disinfowatch/internal/jobs"
	"disinfowatch/internal/logging"
	"disinfowatch/internal/schedule"
	"disinfowatch/internal/scheduler"
)

func main() {
	cfg, err := appcfg.Load("")
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger, closeLog := logging.Setup(cfg.Logging.File, cfg.Logging.Level)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	registry := jobs.NewRegistry(cfg.Paths.JobStatusFile())
	controller := jobs.NewController(logger, registry)
	store := schedule.NewStore(cfg.Paths.ScheduleFile())

	loop := scheduler.New(logger, store, controller, cfg.Scheduler.Command, cfg.Scheduler.Tick)

	rootCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("scheduler starting", "tick", cfg.Scheduler.Tick.String())
	if err := loop.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler loop failed", "err", err)
		os.Exit(1)
	}
	logger.Info("scheduler stopped")
}
