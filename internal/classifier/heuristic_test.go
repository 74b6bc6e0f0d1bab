package classifier

import (
	"context"
	"testing"

	"disinfowatch/internal/metadata"
)

func TestHeuristic_Score(t *testing.T) {
	cases := []struct {
		name        string
		entities    int
		threshold   int
		wantFlagged bool
		wantConf    float64
	}{
		{name: "below threshold", entities: 3, threshold: 5, wantFlagged: false, wantConf: 0.10},
		{name: "at threshold", entities: 5, threshold: 5, wantFlagged: false, wantConf: 0.10},
		{name: "above threshold", entities: 6, threshold: 5, wantFlagged: true, wantConf: 0.85},
		{name: "zero threshold falls back to 5", entities: 6, threshold: 0, wantFlagged: true, wantConf: 0.85},
		{name: "custom threshold", entities: 3, threshold: 2, wantFlagged: true, wantConf: 0.85},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := metadata.Record{Text: "x"}
			for i := 0; i < tc.entities; i++ {
				rec.NamedEntities = append(rec.NamedEntities, "e")
			}
			got, err := Heuristic{EntityFlagThreshold: tc.threshold}.Score(context.Background(), rec)
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if got.Flagged != tc.wantFlagged || got.Confidence != tc.wantConf {
				t.Fatalf("got %+v, want flagged=%v conf=%g", got, tc.wantFlagged, tc.wantConf)
			}
			if got.Reason == "" {
				t.Fatal("reason must not be empty")
			}
		})
	}
}
