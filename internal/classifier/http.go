package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"disinfowatch/internal/inference"
	"disinfowatch/internal/metadata"
)

// HTTPClient scores records against a remote model service. The service
// accepts a JSON document and answers with a verdict in the inference result
// shape.
type HTTPClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var (
	_ Scorer     = (*HTTPClient)(nil)
	_ Classifier = (*HTTPClient)(nil)
)

// NewHTTPClient creates a reusable client for the model service at endpoint.
// A zero timeout falls back to 15 seconds.
func NewHTTPClient(endpoint, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Score posts the record for classification.
func (c *HTTPClient) Score(ctx context.Context, rec metadata.Record) (inference.Result, error) {
	payload := map[string]any{
		"type":           rec.Type,
		"title":          rec.Title,
		"text":           rec.Text,
		"named_entities": rec.NamedEntities,
		"source_domain":  rec.SourceDomain,
	}

	var result inference.Result
	if err := c.post(ctx, "/classify", payload, &result); err != nil {
		return inference.Result{}, err
	}
	return result, nil
}

// Predict returns one label per input text.
func (c *HTTPClient) Predict(ctx context.Context, texts []string) ([]string, error) {
	var resp struct {
		Labels []string `json:"labels"`
	}
	if err := c.post(ctx, "/predict", map[string]any{"texts": texts}, &resp); err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

// PredictProba returns one probability vector per input text.
func (c *HTTPClient) PredictProba(ctx context.Context, texts []string) ([][]float64, error) {
	var resp struct {
		Probabilities [][]float64 `json:"probabilities"`
	}
	if err := c.post(ctx, "/predict_proba", map[string]any{"texts": texts}, &resp); err != nil {
		return nil, err
	}
	return resp.Probabilities, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
