// Package infer runs the classifier over the processed metadata tree and
// appends verdicts to the inference log. It is the body of the inference
// job the scheduler launches.
package infer

import (
	"context"
	"fmt"
	"log/slog"

	"disinfowatch/internal/classifier"
	"disinfowatch/internal/common"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/metadata"
)

// Runner scores metadata records that have no logged verdict yet.
type Runner struct {
	log    *slog.Logger
	store  *metadata.Store
	scorer classifier.Scorer
	inflog *inference.Log
}

// NewRunner wires a runner over the given store, scorer, and result log.
func NewRunner(log *slog.Logger, store *metadata.Store, scorer classifier.Scorer, inflog *inference.Log) *Runner {
	return &Runner{log: log, store: store, scorer: scorer, inflog: inflog}
}

// Run scores every unscored record, or every record when rescore is set, and
// returns the number of results appended. A single failing record aborts the
// run so a broken backend cannot silently half-fill the log.
func (r *Runner) Run(ctx context.Context, rescore bool) (int, error) {
	items, err := r.store.List()
	if err != nil {
		return 0, fmt.Errorf("list metadata: %w", err)
	}

	scored := map[string]inference.Result{}
	if !rescore {
		if scored, err = r.inflog.ResultsByFile(); err != nil {
			return 0, fmt.Errorf("load inference log: %w", err)
		}
	}

	appended := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return appended, err
		}
		if _, done := scored[item.Identity]; done {
			continue
		}

		result, err := r.scorer.Score(ctx, item.Record)
		if err != nil {
			return appended, fmt.Errorf("score %s: %w", item.Identity, err)
		}

		recordType := item.Record.Type
		if recordType == "" {
			recordType = common.TypeUnknown
		}
		entry := inference.Entry{File: item.Identity, Type: recordType, Result: result}
		if err := r.inflog.Append(entry); err != nil {
			return appended, fmt.Errorf("append result for %s: %w", item.Identity, err)
		}
		appended++
		r.log.Info("scored record",
			"file", item.Identity,
			"flagged", result.Flagged,
			"confidence", result.Confidence)
	}

	r.log.Info("inference run complete", "records", len(items), "scored", appended)
	return appended, nil
}
