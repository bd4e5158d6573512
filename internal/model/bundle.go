package model

import (
	"encoding/json"
	"fmt"
	"os"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
	"agrosim/internal/features"

	"gonum.org/v1/gonum/mat"
)

// Metrics captures trainer-reported model quality.
type Metrics struct {
	R2            float64 `json:"r2"`
	MAE           float64 `json:"mae"`
	ConfidencePct float64 `json:"confidence_pct"`
	TrainRows     int     `json:"train_rows"`
	HoldoutRows   int     `json:"holdout_rows"`
}

// Metadata describes the artifact bundle.
type Metadata struct {
	ModelName      string  `json:"model_name"`
	Version        string  `json:"model_version"`
	TrainedAt      string  `json:"trained_at"`
	CorpusChecksum string  `json:"corpus_checksum"`
	Metrics        Metrics `json:"metrics"`
}

// Bundle is the versioned model artifact: a fitted linear yield model, the
// feature encoder it was fitted with, and metadata. The encoder and weights
// always travel together so the request-time encoding matches training
// bit-for-bit.
type Bundle struct {
	Metadata  Metadata         `json:"metadata"`
	Encoder   features.Encoder `json:"encoder"`
	Weights   []float64        `json:"weights"`
	Intercept float64          `json:"intercept"`
}

// Load reads and validates a bundle file. Callers at startup treat an error
// here as fatal; the request path treats a missing bundle as a fallback
// trigger instead.
func Load(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: bundle file %s", core.ErrModelUnavailable, path)
		}
		return nil, fmt.Errorf("failed to read model bundle: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: bundle %s does not parse: %v", core.ErrModelUnavailable, path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the bundle's weight vector against its own feature schema.
// A mismatch means the artifact was corrupted or built by an incompatible
// pipeline and must not serve predictions.
func (b *Bundle) Validate() error {
	if b.Metadata.Version == "" {
		return core.NewSchemaMismatchError("bundle has no model_version")
	}
	if err := b.Encoder.Validate(); err != nil {
		return err
	}
	want := len(b.Encoder.FeatureNames())
	if len(b.Weights) != want {
		return core.NewSchemaMismatchError(fmt.Sprintf(
			"weight vector length %d does not match feature schema length %d",
			len(b.Weights), want))
	}
	return nil
}

// Predict transforms one scenario and applies the linear model, returning
// yield per unit area. Pure function over immutable state; safe for
// concurrent callers.
func (b *Bundle) Predict(s scenario.Scenario, cov features.Covariates) (float64, error) {
	x, err := b.Encoder.Transform(s, cov)
	if err != nil {
		return 0, core.NewPredictionError(s.Key(), err)
	}
	w := mat.NewVecDense(len(b.Weights), b.Weights)
	xv := mat.NewVecDense(len(x), x)
	return mat.Dot(w, xv) + b.Intercept, nil
}

// Save writes the bundle as indented JSON.
func (b *Bundle) Save(path string) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model bundle: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write model bundle: %w", err)
	}
	return nil
}
