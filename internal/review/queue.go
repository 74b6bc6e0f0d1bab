package review

import (
	"log/slog"

	"disinfowatch/internal/fsjson"
	"disinfowatch/internal/telemetry"
)

// Queue persists review queue snapshots as JSON lines. Every write replaces
// the previous snapshot; the queue is a view of current uncertainty, not a
// backlog.
type Queue struct {
	path string
	log  *slog.Logger
}

// NewQueue returns a queue stored at path.
func NewQueue(log *slog.Logger, path string) *Queue {
	return &Queue{path: path, log: log}
}

// Write atomically replaces the queue file with items.
func (q *Queue) Write(items []Item) error {
	if err := fsjson.WriteLines(q.path, items); err != nil {
		return err
	}
	telemetry.QueueBuilds.Inc()
	telemetry.QueueSize.Set(float64(len(items)))
	return nil
}

// Read returns the current snapshot in stored order; a missing file is an
// empty queue and malformed lines are skipped.
func (q *Queue) Read() ([]Item, error) {
	items, skipped, err := fsjson.ReadLines[Item](q.path)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		q.log.Warn("skipped malformed review queue lines", "count", skipped)
	}
	return items, nil
}
