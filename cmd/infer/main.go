// The infer binary scores metadata records with the configured classifier
// backend and appends verdicts to the inference log. By default only
// unscored records are visited; -rescore revisits everything.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"disinfowatch/internal/classifier"
	appcfg "disinfowatch/internal/config"
	"disinfowatch/internal/infer"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/logging"
	"disinfowatch/internal/metadata"
)

func main() {
	rescore := flag.Bool("rescore", false, "rescore records that already have a logged result")
	flag.Parse()

	cfg, err := appcfg.Load("")
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger, closeLog := logging.Setup(cfg.Logging.File, cfg.Logging.Level)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	scorer, err := classifier.FromConfig(cfg.Classifier)
	if err != nil {
		logger.Error("build classifier", "err", err)
		os.Exit(1)
	}

	runner := infer.NewRunner(
		logger,
		metadata.NewStore(logger, cfg.Paths.ProcessedDir()),
		scorer,
		inference.NewLog(logger, cfg.Paths.InferenceLogFile(), cfg.Paths.ProcessedDir()),
	)

	rootCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	n, err := runner.Run(rootCtx, *rescore)
	if err != nil {
		logger.Error("inference run failed", "scored", n, "err", err)
		os.Exit(1)
	}
	logger.Info("inference finished", "scored", n)
}
