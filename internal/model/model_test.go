package model_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
	"agrosim/internal/features"
	"agrosim/internal/model"
	"agrosim/internal/testkit"
)

func fitTestBundle(t *testing.T) *model.Bundle {
	t.Helper()
	b, err := model.Fit(testkit.SyntheticCorpus(), model.TrainOptions{Version: "test-1"})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return b
}

func TestFitProducesValidBundle(t *testing.T) {
	b := fitTestBundle(t)

	if err := b.Validate(); err != nil {
		t.Fatalf("fitted bundle failed validation: %v", err)
	}
	if b.Metadata.Version != "test-1" {
		t.Errorf("expected version test-1, got %q", b.Metadata.Version)
	}
	if b.Metadata.CorpusChecksum == "" {
		t.Error("expected a corpus checksum")
	}
	if got, want := len(b.Weights), len(b.Encoder.FeatureNames()); got != want {
		t.Errorf("weight vector length %d does not match %d features", got, want)
	}

	m := b.Metadata.Metrics
	total := testkit.SyntheticCorpus().Len()
	if m.TrainRows+m.HoldoutRows != total {
		t.Errorf("expected train+holdout rows to cover %d observations, got %d+%d",
			total, m.TrainRows, m.HoldoutRows)
	}
	if m.ConfidencePct < 10 || m.ConfidencePct > 95 {
		t.Errorf("confidence pct %g outside clip range [10, 95]", m.ConfidencePct)
	}
}

func TestFitEmptyCorpus(t *testing.T) {
	if _, err := model.Fit(nil, model.TrainOptions{}); !errors.Is(err, core.ErrCorpusEmpty) {
		t.Errorf("expected ErrCorpusEmpty, got %v", err)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	a := fitTestBundle(t)
	b := fitTestBundle(t)

	if a.Intercept != b.Intercept {
		t.Errorf("intercepts differ: %g vs %g", a.Intercept, b.Intercept)
	}
	for i := range a.Weights {
		if a.Weights[i] != b.Weights[i] {
			t.Errorf("weight %d differs: %g vs %g", i, a.Weights[i], b.Weights[i])
		}
	}
}

func TestPredictRecoversCorpusSignal(t *testing.T) {
	b := fitTestBundle(t)

	strong := scenario.Scenario{
		District: "Mysuru", Crop: "Rice", Season: "Kharif",
		SoilType: "Loamy", Irrigation: "Drip", Area: 2,
	}
	weak := scenario.Scenario{
		District: "Mysuru", Crop: "Cotton", Season: "Rabi",
		SoilType: "Clay", Irrigation: "Canal", Area: 2,
	}

	strongYield, err := b.Predict(strong, features.Covariates{})
	if err != nil {
		t.Fatalf("Predict(strong) failed: %v", err)
	}
	weakYield, err := b.Predict(weak, features.Covariates{})
	if err != nil {
		t.Fatalf("Predict(weak) failed: %v", err)
	}

	// The corpus puts Kharif drip rice ~2 tons above Rabi canal cotton; a
	// fitted linear model has to preserve at least the ordering.
	if strongYield <= weakYield {
		t.Errorf("expected rice/kharif/drip (%g) above cotton/rabi/canal (%g)",
			strongYield, weakYield)
	}
	if math.IsNaN(strongYield) || math.IsInf(strongYield, 0) {
		t.Errorf("non-finite prediction %g", strongYield)
	}
}

func TestPredictInvalidArea(t *testing.T) {
	b := fitTestBundle(t)
	s := scenario.Scenario{
		District: "Mysuru", Crop: "Rice", Season: "Kharif",
		SoilType: "Loamy", Irrigation: "Drip", Area: 0,
	}
	if _, err := b.Predict(s, features.Covariates{}); !errors.Is(err, core.ErrPredictionFailed) {
		t.Errorf("expected wrapped prediction failure, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := fitTestBundle(t)
	path := filepath.Join(t.TempDir(), "bundle.json")

	if err := b.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := model.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Metadata.Version != b.Metadata.Version {
		t.Errorf("version mismatch after round trip: %q vs %q",
			loaded.Metadata.Version, b.Metadata.Version)
	}
	if loaded.Intercept != b.Intercept {
		t.Errorf("intercept mismatch after round trip: %g vs %g", loaded.Intercept, b.Intercept)
	}

	s := scenario.Scenario{
		District: "Mysuru", Crop: "Rice", Season: "Kharif",
		SoilType: "Loamy", Irrigation: "Drip", Area: 2,
	}
	orig, _ := b.Predict(s, features.Covariates{})
	round, _ := loaded.Predict(s, features.Covariates{})
	if math.Abs(orig-round) > 1e-9 {
		t.Errorf("prediction drifted after round trip: %g vs %g", orig, round)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := model.Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, core.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestValidateRejectsTruncatedWeights(t *testing.T) {
	b := fitTestBundle(t)
	b.Weights = b.Weights[:len(b.Weights)-1]
	if err := b.Validate(); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}
