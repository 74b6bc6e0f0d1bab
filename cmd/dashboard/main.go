// The dashboard binary serves the operator API: job control, schedule
// edits, the review queue, manual labels, and inference log views.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appcfg "disinfowatch/internal/config"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/jobs"
	"disinfowatch/internal/labels"
	"disinfowatch/internal/logging"
	"disinfowatch/internal/review"
	"disinfowatch/internal/schedule"
	"disinfowatch/internal/server"
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

	svc := &server.Service{
		Log:      logger,
		Cfg:      cfg,
		Jobs:     controller,
		Schedule: schedule.NewStore(cfg.Paths.ScheduleFile()),
		Queue:    review.NewQueue(logger, cfg.Paths.ReviewQueueFile()),
		Labels:   labels.NewStore(logger, cfg.Paths.LabelLogFile()),
		InfLog:   inference.NewLog(logger, cfg.Paths.InferenceLogFile(), cfg.Paths.ProcessedDir()),
	}
	httpSrv := server.NewHTTPServer(svc)

	rootCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard api starting", "address", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	logger.Info("dashboard stopped")
}
