package review

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testQueue(t *testing.T) (*Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "review_queue.jsonl")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewQueue(log, path), path
}

func TestQueue_ReadMissingFile(t *testing.T) {
	q, _ := testQueue(t)
	items, err := q.Read()
	if err != nil {
		t.Fatalf("missing queue should read empty: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty queue, got %+v", items)
	}
}

func TestQueue_WriteReplacesSnapshot(t *testing.T) {
	q, _ := testQueue(t)
	first := []Item{
		{File: "a.json", Uncertainty: 0.9, Type: "article"},
		{File: "b.json", Uncertainty: 0.5, Type: "tweet"},
	}
	if err := q.Write(first); err != nil {
		t.Fatalf("write: %v", err)
	}

	second := []Item{{File: "c.json", Uncertainty: 0.7, Type: "article"}}
	if err := q.Write(second); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	got, err := q.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].File != "c.json" {
		t.Fatalf("old snapshot leaked through: %+v", got)
	}
}

func TestQueue_WriteEmptyIsValid(t *testing.T) {
	q, path := testQueue(t)
	if err := q.Write([]Item{{File: "a.json", Uncertainty: 0.9}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := q.Write(nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("empty queue file should be empty, got %q", data)
	}
}
