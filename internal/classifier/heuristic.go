package classifier

import (
	"context"

	"disinfowatch/internal/inference"
	"disinfowatch/internal/metadata"
)

// Heuristic flags records with an unusually high named-entity count. It is a
// deliberately simple stand-in so the rest of the loop can run without a
// model service.
type Heuristic struct {
	// EntityFlagThreshold is the entity count above which a record is
	// flagged; zero or negative falls back to 5.
	EntityFlagThreshold int
}

var _ Scorer = Heuristic{}

// Score applies the entity-count rule.
func (h Heuristic) Score(_ context.Context, rec metadata.Record) (inference.Result, error) {
	threshold := h.EntityFlagThreshold
	if threshold <= 0 {
		threshold = 5
	}
	if len(rec.NamedEntities) > threshold {
		return inference.Result{
			Confidence: 0.85,
			Flagged:    true,
			Reason:     "High named entity density",
		}, nil
	}
	return inference.Result{
		Confidence: 0.10,
		Flagged:    false,
		Reason:     "Normal content",
	}, nil
}
