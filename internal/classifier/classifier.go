// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package classifier is the integration contract with the statistical
// scam/spam text classifier. The model is trained and served out of
// process; this package only speaks to it. When the sidecar is down
// the caller gets an error, which the aggregator reports as
// "classifier unavailable" rather than assuming any label.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/swarai-git/digital-literacy-assistant/internal/telemetry"
)

type Label string

const (
	LabelScam       Label = "scam"
	LabelSuspicious Label = "suspicious"
	LabelSafe       Label = "safe"
)

// Prediction is the black-box verdict: a label and a 0-100 confidence.
type Prediction struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}

const defaultTimeout = 5 * time.Second

// HTTPClassifier calls the model sidecar's /predict endpoint.
type HTTPClassifier struct {
	endpoint   string
	httpClient *http.Client
	registry   *telemetry.Registry
}

type Option func(*HTTPClassifier)

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClassifier) { c.httpClient = h }
}

func WithTelemetry(r *telemetry.Registry) Option {
	return func(c *HTTPClassifier) { c.registry = r }
}

func NewHTTP(endpoint string, opts ...Option) *HTTPClassifier {
	c := &HTTPClassifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	start := time.Now()

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, c.fail(fmt.Errorf("classifier request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, c.fail(fmt.Errorf("classifier returned %d", resp.StatusCode))
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return Prediction{}, c.fail(fmt.Errorf("decode prediction: %w", err))
	}

	switch pred.Label {
	case LabelScam, LabelSuspicious, LabelSafe:
	default:
		return Prediction{}, c.fail(fmt.Errorf("unknown label %q", pred.Label))
	}

	if pred.Confidence < 0 {
		pred.Confidence = 0
	}
	if pred.Confidence > 100 {
		pred.Confidence = 100
	}

	if c.registry != nil {
		c.registry.RecordSuccess(telemetry.ProviderClassifier, time.Since(start))
	}
	return pred, nil
}

func (c *HTTPClassifier) fail(err error) error {
	if c.registry != nil {
		c.registry.RecordFailure(telemetry.ProviderClassifier, err.Error())
	}
	return err
}
