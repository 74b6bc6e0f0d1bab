package classifier

import (
	"context"
	"fmt"

	"disinfowatch/internal/common"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/metadata"
)

// ModelScorer adapts a batch Classifier to the per-record Scorer the
// inference job consumes. Confidence is the maximum class probability;
// a record is flagged when the predicted label is the disinformation class.
type ModelScorer struct {
	Classifier Classifier
}

var _ Scorer = ModelScorer{}

// Score classifies the record's text.
func (m ModelScorer) Score(ctx context.Context, rec metadata.Record) (inference.Result, error) {
	texts := []string{rec.Text}

	labels, err := m.Classifier.Predict(ctx, texts)
	if err != nil {
		return inference.Result{}, fmt.Errorf("predict: %w", err)
	}
	probas, err := m.Classifier.PredictProba(ctx, texts)
	if err != nil {
		return inference.Result{}, fmt.Errorf("predict proba: %w", err)
	}
	if len(labels) != 1 || len(probas) != 1 {
		return inference.Result{}, fmt.Errorf("classifier returned %d labels and %d probability vectors for one text",
			len(labels), len(probas))
	}

	confidence := 0.0
	for _, p := range probas[0] {
		if p > confidence {
			confidence = p
		}
	}

	return inference.Result{
		Confidence: confidence,
		Flagged:    labels[0] == common.LabelDisinformation,
		Reason:     "Model label: " + labels[0],
	}, nil
}
