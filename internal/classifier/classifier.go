// Package classifier scores metadata records for disinformation likelihood.
// Two backends exist: a built-in heuristic used for local loops and seeding,
// and an HTTP client for a real model service. Both satisfy Scorer.
package classifier

import (
	"context"
	"fmt"

	"disinfowatch/internal/config"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/metadata"
)

// Scorer produces a classifier verdict for one metadata record.
type Scorer interface {
	Score(ctx context.Context, rec metadata.Record) (inference.Result, error)
}

// Classifier is the batch model collaborator: label predictions and
// per-class probability vectors, one entry per input text.
type Classifier interface {
	Predict(ctx context.Context, texts []string) ([]string, error)
	PredictProba(ctx context.Context, texts []string) ([][]float64, error)
}

// FromConfig builds the configured scorer backend.
func FromConfig(cfg config.ClassifierConfig) (Scorer, error) {
	switch cfg.Provider {
	case "heuristic":
		return Heuristic{EntityFlagThreshold: cfg.Heuristic.EntityFlagThreshold}, nil
	case "http":
		return NewHTTPClient(cfg.HTTP.Endpoint, cfg.HTTP.APIKey, cfg.HTTP.Timeout), nil
	}
	return nil, fmt.Errorf("unsupported classifier provider %q", cfg.Provider)
}
