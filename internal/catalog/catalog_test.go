package catalog

import (
	"errors"
	"math"
	"testing"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
)

func testCorpus() *corpus.Corpus {
	obs := func(crop, season, soil, irr string, area, yield float64) corpus.Observation {
		return corpus.Observation{
			District:   "Mysuru",
			Crop:       crop,
			Season:     season,
			SoilType:   soil,
			Irrigation: irr,
			Area:       area,
			Yield:      yield,
		}
	}
	return &corpus.Corpus{
		District: "Mysuru",
		Observations: []corpus.Observation{
			obs("Rice", "Kharif", "Loamy", "Drip", 2, 3.0),
			obs("Rice", "Kharif", "Loamy", "Drip", 3, 3.4),
			obs("Rice", "Rabi", "Clay", "Canal", 2, 2.2),
			obs("Ragi", "Kharif", "Loamy", "Canal", 4, 1.6),
		},
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, core.ErrCorpusEmpty) {
		t.Errorf("expected ErrCorpusEmpty for nil corpus, got %v", err)
	}
	if _, err := Build(&corpus.Corpus{}); !errors.Is(err, core.ErrCorpusEmpty) {
		t.Errorf("expected ErrCorpusEmpty for empty corpus, got %v", err)
	}
}

func TestBuildCollectsOrderedValues(t *testing.T) {
	cat, err := Build(testCorpus())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	crops, err := cat.ValuesFor(corpus.DimCrop)
	if err != nil {
		t.Fatalf("ValuesFor(crop) failed: %v", err)
	}
	if len(crops) != 2 || crops[0] != "Ragi" || crops[1] != "Rice" {
		t.Errorf("expected sorted crops [Ragi Rice], got %v", crops)
	}

	seasons, _ := cat.ValuesFor(corpus.DimSeason)
	if len(seasons) != 2 || seasons[0] != "Kharif" || seasons[1] != "Rabi" {
		t.Errorf("expected sorted seasons [Kharif Rabi], got %v", seasons)
	}

	areas := cat.Areas()
	if len(areas) != 3 || areas[0] != 2 || areas[2] != 4 {
		t.Errorf("expected ascending areas [2 3 4], got %v", areas)
	}
}

func TestValuesForUnknownDimension(t *testing.T) {
	cat, _ := Build(testCorpus())
	if _, err := cat.ValuesFor("color"); !errors.Is(err, core.ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
}

func TestContains(t *testing.T) {
	cat, _ := Build(testCorpus())
	if !cat.Contains(corpus.DimCrop, "Rice") {
		t.Error("expected Rice to be a valid crop")
	}
	if cat.Contains(corpus.DimCrop, "Banana") {
		t.Error("expected Banana to be rejected")
	}
}

func TestObservedCombinations(t *testing.T) {
	cat, _ := Build(testCorpus())

	observed := corpus.CombinationKey{Crop: "Rice", Season: "Kharif", SoilType: "Loamy", Irrigation: "Drip"}
	if !cat.IsObserved(observed) {
		t.Error("expected Rice/Kharif/Loamy/Drip to be observed")
	}
	if got := cat.MatchCount(observed); got != 2 {
		t.Errorf("expected 2 matching rows, got %d", got)
	}

	// Valid per-dimension values whose tuple never occurs together.
	unobserved := corpus.CombinationKey{Crop: "Ragi", Season: "Rabi", SoilType: "Clay", Irrigation: "Drip"}
	if cat.IsObserved(unobserved) {
		t.Error("expected Ragi/Rabi/Clay/Drip to be unobserved")
	}
	if got := cat.MatchCount(unobserved); got != 0 {
		t.Errorf("expected 0 matching rows, got %d", got)
	}

	if got := cat.CombinationCount(); got != 3 {
		t.Errorf("expected 3 distinct combinations, got %d", got)
	}
}

func TestYieldSpread(t *testing.T) {
	cat, _ := Build(testCorpus())

	key := corpus.CombinationKey{Crop: "Rice", Season: "Kharif", SoilType: "Loamy", Irrigation: "Drip"}
	mean, cv, ok := cat.YieldSpread(key)
	if !ok {
		t.Fatal("expected yield spread for observed combination")
	}
	if math.Abs(mean-3.2) > 1e-9 {
		t.Errorf("expected mean 3.2, got %g", mean)
	}
	// Sample sd of {3.0, 3.4} is 0.2*sqrt(2); cv = sd/mean.
	wantCV := 0.2 * math.Sqrt2 / 3.2
	if math.Abs(cv-wantCV) > 1e-9 {
		t.Errorf("expected cv %g, got %g", wantCV, cv)
	}

	single := corpus.CombinationKey{Crop: "Ragi", Season: "Kharif", SoilType: "Loamy", Irrigation: "Canal"}
	if _, cv, ok := cat.YieldSpread(single); !ok || cv != 0 {
		t.Errorf("expected zero cv for single-row combination, got cv=%g ok=%t", cv, ok)
	}

	if _, _, ok := cat.YieldSpread(corpus.CombinationKey{Crop: "Banana"}); ok {
		t.Error("expected no yield spread for unknown combination")
	}
}

func TestOptionsIncludesAreas(t *testing.T) {
	cat, _ := Build(testCorpus())
	opts := cat.Options()

	if _, ok := opts[corpus.DimArea].([]float64); !ok {
		t.Fatalf("expected area option list, got %T", opts[corpus.DimArea])
	}
	for _, dim := range corpus.Dimensions {
		if _, ok := opts[dim]; !ok {
			t.Errorf("options missing dimension %q", dim)
		}
	}
}
