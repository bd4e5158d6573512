package features

import (
	"errors"
	"math"
	"testing"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
)

func testEncoder() *Encoder {
	return &Encoder{
		Schema: Schema{
			Numeric:     []string{ColArea, ColTemperature},
			Categorical: []string{"crop", "irrigation"},
		},
		Categories: map[string][]string{
			"crop":       {"Ragi", "Rice"},
			"irrigation": {"Canal", "Drip"},
		},
		Means:  map[string]float64{ColArea: 3, ColTemperature: 25},
		Scales: map[string]float64{ColArea: 2, ColTemperature: 5},
	}
}

func TestFeatureNamesOrder(t *testing.T) {
	e := testEncoder()
	got := e.FeatureNames()
	want := []string{"area", "temperature", "crop=Ragi", "crop=Rice", "irrigation=Canal", "irrigation=Drip"}
	if len(got) != len(want) {
		t.Fatalf("expected %d feature names, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("feature %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTransformScalesAndEncodes(t *testing.T) {
	e := testEncoder()
	s := scenario.Scenario{Crop: "Rice", Irrigation: "Drip", Area: 5}
	vec, err := e.Transform(s, Covariates{Temperature: 30})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	want := []float64{1, 1, 0, 1, 0, 1} // (5-3)/2, (30-25)/5, one-hots
	if len(vec) != len(want) {
		t.Fatalf("expected vector length %d, got %d", len(want), len(vec))
	}
	for i := range want {
		if math.Abs(vec[i]-want[i]) > 1e-12 {
			t.Errorf("vec[%d]: expected %g, got %g", i, want[i], vec[i])
		}
	}
}

func TestTransformUnknownCategoryAllZero(t *testing.T) {
	e := testEncoder()
	s := scenario.Scenario{Crop: "Banana", Irrigation: "Drip", Area: 3}
	vec, err := e.Transform(s, Covariates{Temperature: 25})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	// Crop group occupies slots 2 and 3; an unknown crop lights neither.
	if vec[2] != 0 || vec[3] != 0 {
		t.Errorf("expected all-zero crop group for unknown value, got %v", vec[2:4])
	}
	if vec[5] != 1 {
		t.Errorf("expected Drip slot set, got %v", vec[4:6])
	}
}

func TestTransformRejectsNonPositiveArea(t *testing.T) {
	e := testEncoder()
	for _, area := range []float64{0, -1} {
		s := scenario.Scenario{Crop: "Rice", Irrigation: "Drip", Area: area}
		if _, err := e.Transform(s, Covariates{}); !errors.Is(err, core.ErrInvalidArea) {
			t.Errorf("area %g: expected ErrInvalidArea, got %v", area, err)
		}
	}
}

func TestTransformFillsMissingCovariatesFromMeans(t *testing.T) {
	e := testEncoder()
	s := scenario.Scenario{Crop: "Rice", Irrigation: "Drip", Area: 3}
	vec, err := e.Transform(s, Covariates{})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	// Temperature falls back to the training mean, which scales to zero.
	if vec[1] != 0 {
		t.Errorf("expected mean-filled temperature to scale to 0, got %g", vec[1])
	}
}

func TestTransformFillsCovariatesFromReferences(t *testing.T) {
	e := testEncoder()
	e.References = ReferenceTables{
		WeatherByDistrictSeason: map[string]map[string]WeatherAggregate{
			"Mysuru": {"Kharif": {Temperature: 30}},
		},
	}
	s := scenario.Scenario{District: "Mysuru", Season: "Kharif", Crop: "Rice", Irrigation: "Drip", Area: 3}
	vec, err := e.Transform(s, Covariates{})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	// (30-25)/5 from the seasonal reference, not the mean.
	if math.Abs(vec[1]-1) > 1e-12 {
		t.Errorf("expected reference-filled temperature to scale to 1, got %g", vec[1])
	}
}

func TestValidate(t *testing.T) {
	e := testEncoder()
	if err := e.Validate(); err != nil {
		t.Fatalf("expected valid encoder, got %v", err)
	}

	broken := testEncoder()
	delete(broken.Means, ColArea)
	if err := broken.Validate(); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch for missing mean, got %v", err)
	}

	zeroScale := testEncoder()
	zeroScale.Scales[ColArea] = 0
	if err := zeroScale.Validate(); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch for zero scale, got %v", err)
	}

	noCats := testEncoder()
	noCats.Categories["crop"] = nil
	if err := noCats.Validate(); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch for empty category set, got %v", err)
	}
}
