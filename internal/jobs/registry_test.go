package jobs

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRegistry_LoadMissingFile(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "job_status.json"))
	records, err := reg.Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty mapping, got %+v", records)
	}
}

func TestRegistry_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_status.json")
	reg := NewRegistry(path)

	started := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	in := map[string]Record{
		"active_learning": {Status: StatusRunning, PID: 4242, LastRun: &started},
	}
	if err := reg.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second registry over the same file sees the same state, the way a
	// separate process would.
	out, err := NewRegistry(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec := out["active_learning"]
	if rec.Status != StatusRunning || rec.PID != 4242 {
		t.Fatalf("round trip mismatch: %+v", rec)
	}
	if rec.LastRun == nil || !rec.LastRun.Equal(started) {
		t.Fatalf("last_run mismatch: %v", rec.LastRun)
	}
}

func TestRegistry_UpdateSkipsSaveWhenUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_status.json")
	reg := NewRegistry(path)

	err := reg.Update(func(records map[string]Record) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// No change means the backing file is still absent.
	records, err := reg.Load()
	if err != nil || len(records) != 0 {
		t.Fatalf("unexpected state after no-op update: %+v, %v", records, err)
	}
}

func TestRegistry_UpdatePersistsChanges(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "job_status.json"))

	err := reg.Update(func(records map[string]Record) (bool, error) {
		records["infer"] = Record{Status: StatusTerminated, PID: 7}
		return true, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	records, err := reg.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records["infer"].Status != StatusTerminated {
		t.Fatalf("update not persisted: %+v", records)
	}
}
