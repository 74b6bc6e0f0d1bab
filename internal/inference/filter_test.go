package inference

import (
	"testing"
	"time"
)

func sampleEntries(now time.Time) []Entry {
	return []Entry{
		{File: "a.json", Type: "article", LoggedAt: now.Add(-time.Hour), Result: Result{Confidence: 0.9, Flagged: true}},
		{File: "b.json", Type: "tweet", LoggedAt: now.AddDate(0, 0, -3), Result: Result{Confidence: 0.2, Flagged: false}},
		{File: "c.json", Type: "article", LoggedAt: now.AddDate(0, 0, -10), Result: Result{Confidence: 0.7, Flagged: true}},
		{File: "d.json", Type: "video_transcript", Result: Result{Confidence: 0.5, Flagged: false}},
	}
}

func filterAt(entries []Entry, now time.Time) *Filter {
	f := NewFilter(entries)
	f.now = func() time.Time { return now }
	return f
}

func TestFilter_ByDaysBack(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	got := filterAt(sampleEntries(now), now).ByDaysBack(5).Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries within 5 days, got %d", len(got))
	}
	for _, e := range got {
		if e.File == "c.json" || e.File == "d.json" {
			t.Fatalf("stale or undated entry survived: %s", e.File)
		}
	}
}

func TestFilter_ByDaysBackDisabled(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	got := filterAt(sampleEntries(now), now).ByDaysBack(-1).Entries()
	if len(got) != 4 {
		t.Fatalf("negative daysBack should pass everything, got %d", len(got))
	}
}

func TestFilter_ByType(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	got := filterAt(sampleEntries(now), now).ByType("article").Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if all := filterAt(sampleEntries(now), now).ByType("All").Entries(); len(all) != 4 {
		t.Fatalf("type All should pass everything, got %d", len(all))
	}
}

func TestFilter_FlaggedOnly(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	got := filterAt(sampleEntries(now), now).FlaggedOnly(true).Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 flagged entries, got %d", len(got))
	}
	for _, e := range got {
		if !e.Result.Flagged {
			t.Fatalf("unflagged entry survived: %s", e.File)
		}
	}
}

func TestFilter_MinConfidenceAndChaining(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	got := filterAt(sampleEntries(now), now).
		ByType("article").
		FlaggedOnly(true).
		MinConfidence(0.8).
		Entries()
	if len(got) != 1 || got[0].File != "a.json" {
		t.Fatalf("chained filter mismatch: %+v", got)
	}
}
