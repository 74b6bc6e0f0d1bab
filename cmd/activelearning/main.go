// The activelearning binary performs one review queue build: it ranks
// unlabeled records by classifier uncertainty and replaces the persisted
// queue snapshot. The scheduler launches it periodically; operators can also
// run it by hand.
package main

import (
	"log/slog"
	"os"

	appcfg "disinfowatch/internal/config"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/labels"
	"disinfowatch/internal/logging"
	"disinfowatch/internal/metadata"
	"disinfowatch/internal/review"
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

	runner := review.NewRunner(
		logger,
		metadata.NewStore(logger, cfg.Paths.ProcessedDir()),
		inference.NewLog(logger, cfg.Paths.InferenceLogFile(), cfg.Paths.ProcessedDir()),
		labels.NewStore(logger, cfg.Paths.LabelLogFile()),
		review.NewBuilder(
			cfg.ActiveLearning.UncertaintyThreshold,
			cfg.ActiveLearning.SampleLimit,
			cfg.ActiveLearning.TextPreviewLen,
		),
		review.NewQueue(logger, cfg.Paths.ReviewQueueFile()),
	)

	items, err := runner.Run()
	if err != nil {
		logger.Error("review queue build failed", "err", err)
		os.Exit(1)
	}
	logger.Info("wrote uncertain samples to queue", "count", len(items))
}
