// Package inference holds the classifier result log: one JSON line per
// scored metadata record, appended by inference jobs and consumed by the
// dashboard and the uncertainty queue builder.
package inference

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"disinfowatch/internal/fsjson"
	"disinfowatch/internal/telemetry"
)

// Result is the classifier verdict for one record.
type Result struct {
	Confidence float64 `json:"confidence"`
	Flagged    bool    `json:"flagged"`
	Reason     string  `json:"reason"`
}

// Entry is one line of the inference log, keyed by the metadata record's
// file identity.
type Entry struct {
	File   string `json:"file"`
	Type   string `json:"type"`
	Result Result `json:"result"`

	// LoggedAt is derived from the metadata file's modification time on
	// load; it is not part of the wire format.
	LoggedAt time.Time `json:"-"`
}

// Log reads and appends the inference log.
type Log struct {
	path         string
	processedDir string
	log          *slog.Logger
}

// NewLog returns a log over the JSONL file at path. processedDir is used to
// resolve record timestamps from metadata file modification times.
func NewLog(log *slog.Logger, path, processedDir string) *Log {
	return &Log{path: path, processedDir: processedDir, log: log}
}

// Append adds one result line to the log.
func (l *Log) Append(entry Entry) error {
	if err := fsjson.AppendLine(l.path, entry); err != nil {
		return err
	}
	telemetry.InferenceResults.Inc()
	return nil
}

// Load returns all entries in file order, with LoggedAt resolved where the
// underlying metadata file still exists. A missing log is an empty slice.
func (l *Log) Load() ([]Entry, error) {
	entries, skipped, err := fsjson.ReadLines[Entry](l.path)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		l.log.Warn("skipped malformed inference log lines", "count", skipped)
	}
	for i := range entries {
		entries[i].LoggedAt = l.resolveTime(entries[i].File)
	}
	return entries, nil
}

// ResultsByFile folds the log into identity -> most recent result.
func (l *Log) ResultsByFile() (map[string]Result, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	byFile := make(map[string]Result, len(entries))
	for _, e := range entries {
		byFile[e.File] = e.Result
	}
	return byFile, nil
}

func (l *Log) resolveTime(file string) time.Time {
	if info, err := os.Stat(file); err == nil {
		return info.ModTime()
	}
	if info, err := os.Stat(filepath.Join(l.processedDir, filepath.Base(file))); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
