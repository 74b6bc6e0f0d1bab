// Package labels is the append-only record of human review decisions. The
// set of ids with at least one entry defines "already labeled" for the
// uncertainty queue builder.
package labels

import (
	"log/slog"
	"time"

	"disinfowatch/internal/fsjson"
	"disinfowatch/internal/telemetry"
)

// Entry is one manual label, one JSON line in the label log.
type Entry struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Store appends to and reads the label log. The store never deduplicates on
// write; chronology is preserved in the file and resolved on read.
type Store struct {
	path string
	log  *slog.Logger
	now  func() time.Time
}

// NewStore returns a store over the JSONL file at path.
func NewStore(log *slog.Logger, path string) *Store {
	return &Store{path: path, log: log, now: time.Now}
}

// Append records a label for the given item identity.
func (s *Store) Append(id, label string) error {
	entry := Entry{ID: id, Label: label, Timestamp: s.now()}
	if err := fsjson.AppendLine(s.path, entry); err != nil {
		return err
	}
	telemetry.LabelsRecorded.Inc()
	s.log.Info("label recorded", "id", id, "label", label)
	return nil
}

// LoadAll folds the log into id -> most recent entry. Later lines overwrite
// earlier ones for the same id, so a corrected label wins over the original.
func (s *Store) LoadAll() (map[string]Entry, error) {
	entries, skipped, err := fsjson.ReadLines[Entry](s.path)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.log.Warn("skipped malformed label lines", "count", skipped)
	}
	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return byID, nil
}

// Entries returns the raw log in file order, for export and audit views.
func (s *Store) Entries() ([]Entry, error) {
	entries, skipped, err := fsjson.ReadLines[Entry](s.path)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.log.Warn("skipped malformed label lines", "count", skipped)
	}
	return entries, nil
}
