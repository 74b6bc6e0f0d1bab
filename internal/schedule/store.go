// Package schedule persists per-task scheduling configuration. Entries are
// edited by the dashboard and re-read by the scheduler loop on every tick, so
// configuration changes take effect without a restart.
package schedule

import "disinfowatch/internal/fsjson"

// Entry is the configuration for one scheduled task.
type Entry struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}

// Store reads and writes the task -> Entry mapping. The store performs no
// validation; callers supply defaults for absent tasks and the dashboard
// enforces the operator-facing interval range.
type Store struct {
	path string
}

// NewStore returns a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the current mapping; a missing file is an empty mapping.
func (s *Store) Load() (map[string]Entry, error) {
	entries := map[string]Entry{}
	if _, err := fsjson.ReadObject(s.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save replaces the whole mapping on disk.
func (s *Store) Save(entries map[string]Entry) error {
	return fsjson.WriteObjectAtomic(s.path, entries)
}

// SetTask updates a single task's entry, preserving the others.
func (s *Store) SetTask(task string, entry Entry) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	entries[task] = entry
	return s.Save(entries)
}
