package review

import (
	"fmt"
	"log/slog"

	"disinfowatch/internal/inference"
	"disinfowatch/internal/labels"
	"disinfowatch/internal/metadata"
)

// Runner wires a full queue build: list metadata, join logged results,
// exclude labeled ids, rank, and persist. It is the body of the
// active-learning job.
type Runner struct {
	log     *slog.Logger
	store   *metadata.Store
	inflog  *inference.Log
	labels  *labels.Store
	builder *Builder
	queue   *Queue
}

// NewRunner assembles a runner from its collaborators.
func NewRunner(log *slog.Logger, store *metadata.Store, inflog *inference.Log, lab *labels.Store, builder *Builder, queue *Queue) *Runner {
	return &Runner{log: log, store: store, inflog: inflog, labels: lab, builder: builder, queue: queue}
}

// Run rebuilds and persists the review queue, returning the written items.
func (r *Runner) Run() ([]Item, error) {
	items, err := r.store.List()
	if err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}
	results, err := r.inflog.ResultsByFile()
	if err != nil {
		return nil, fmt.Errorf("load inference log: %w", err)
	}
	labeled, err := r.labels.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	labeledIDs := make(map[string]bool, len(labeled))
	for id := range labeled {
		labeledIDs[id] = true
	}

	queue := r.builder.Build(items, results, labeledIDs)
	if err := r.queue.Write(queue); err != nil {
		return nil, fmt.Errorf("write review queue: %w", err)
	}
	r.log.Info("review queue rebuilt",
		"candidates", len(items),
		"labeled", len(labeledIDs),
		"queued", len(queue))
	return queue, nil
}
