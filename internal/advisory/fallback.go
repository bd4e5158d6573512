package advisory

import (
	"fmt"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
	"agrosim/domain/scenario"
)

// FallbackConfidence is the fixed confidence attached to every heuristic
// advisory. The fallback deliberately never pretends to model-grade
// certainty.
const FallbackConfidence = 0.5

// fallbackYields is a built-in per-crop yield heuristic (tons per unit
// area). Entirely self-contained: no corpus, no model. Values follow common
// south-Indian extension-service planning figures.
var fallbackYields = map[string]float64{
	"Rice":      2.8,
	"Paddy":     2.8,
	"Wheat":     2.1,
	"Maize":     2.5,
	"Ragi":      1.6,
	"Jowar":     1.2,
	"Groundnut": 1.4,
	"Cotton":    1.7,
	"Soybean":   1.3,
	"Sugarcane": 70.0,
	"Onion":     14.0,
	"Potato":    18.0,
	"Pulses":    0.9,
}

// fallbackDefaultYield serves crops missing from the table.
const fallbackDefaultYield = 1.5

// FallbackAdvisor is the pipeline's terminal safety net: invoked on any
// upstream failure (missing model, empty candidate set, prediction error,
// non-positive estimate) it always produces a non-error advisory. It never
// fails and is deterministic for identical input.
type FallbackAdvisor struct{}

// NewFallbackAdvisor creates the fallback advisor.
func NewFallbackAdvisor() *FallbackAdvisor {
	return &FallbackAdvisor{}
}

// Advise produces a heuristic advisory for the given district, crop, and
// area. Non-positive areas contribute zero total yield rather than failing.
func (f *FallbackAdvisor) Advise(district, crop string, area float64) scenario.AdvisoryReport {
	crop = corpus.NormalizeValue(crop)
	district = corpus.NormalizeValue(district)
	if district == "" {
		district = "your"
	}

	yield, known := fallbackYields[crop]
	if !known {
		yield = fallbackDefaultYield
	}
	if area < 0 {
		area = 0
	}
	total := yield * area

	cropLabel := crop
	if cropLabel == "" {
		cropLabel = "the selected crop"
	}

	narrative := fmt.Sprintf(
		"Indicative estimate for %s in %s district: around %.2f tons per unit area, roughly %.2f tons for %g units.\n\n"+
			"This figure comes from general per-crop planning tables, not from a trained model or local historical data. "+
			"Treat it as a starting point only and consult local agronomy guidance before making planting decisions.",
		cropLabel, district, yield, total, area)

	return scenario.AdvisoryReport{
		ID:        core.NewReportID(),
		Status:    scenario.StatusFallback,
		Narrative: narrative,
		Summary: scenario.PredictionResult{
			Scenario: scenario.Scenario{
				District: district,
				Crop:     crop,
				Area:     area,
			},
			YieldPerArea:        yield,
			EstimatedTotalYield: total,
			Confidence:          FallbackConfidence,
			Risk:                scenario.RiskModerate,
			Observed:            false,
		},
		CoverageWarning:    true,
		ConfidenceAdjusted: false,
	}
}
