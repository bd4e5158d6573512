package advisory

import (
	"fmt"
	"strings"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
)

// Composer renders ranked, calibrated results into a plain-language
// advisory. Template-based and fully deterministic: the same ranked set
// always yields the same narrative. No external text generation.
type Composer struct{}

// NewComposer creates an advisory composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose builds the advisory report for a ranked strategy set. The set
// must be non-empty; the pipeline guarantees that by routing empty sets to
// the fallback advisor before composition.
func (c *Composer) Compose(district string, set scenario.RankedStrategySet) scenario.AdvisoryReport {
	best, _ := set.Best()

	var b strings.Builder
	fmt.Fprintf(&b, "After analysing %d possible farming configurations for %s district:\n\n",
		set.Analytics.ScenarioCount, district)

	fmt.Fprintf(&b, "The highest predicted yield is achieved by cultivating %s during the %s season using %s irrigation on %s soil.\n",
		best.Scenario.Crop, best.Scenario.Season,
		strings.ToLower(best.Scenario.Irrigation), strings.ToLower(best.Scenario.SoilType))
	fmt.Fprintf(&b, "Estimated yield: %.2f tons per unit area (~%.2f tons total for %g units) with %s confidence and %s risk.\n",
		best.YieldPerArea, best.EstimatedTotalYield, best.Scenario.Area,
		confidenceLabel(best.Confidence), strings.ToLower(string(best.Risk)))

	if set.CoverageWarning {
		b.WriteString("\nCoverage note: no historically similar combination exists for this request. " +
			"The estimate is extrapolated and indicative rather than data-backed; " +
			"validate it with local agronomy guidance before acting on it.\n")
	} else if set.ConfidenceAdjusted {
		b.WriteString("\nNote: historical data matching parts of this request is sparse, so confidence has been reduced accordingly.\n")
	}

	if lr := set.Analytics.LowestRisk; lr != nil && lr.Scenario.Key() != best.Scenario.Key() {
		fmt.Fprintf(&b, "\nFrom a risk-management perspective, the most stable configuration is %s in %s with %s irrigation on %s soil, delivering approximately %.2f tons per unit area at %s risk.\n",
			lr.Scenario.Crop, lr.Scenario.Season,
			strings.ToLower(lr.Scenario.Irrigation), strings.ToLower(lr.Scenario.SoilType),
			lr.YieldPerArea, strings.ToLower(string(lr.Risk)))
	}

	if set.Analytics.HasIrrigationComparison {
		best, second := set.Analytics.IrrigationImpact[0], set.Analytics.IrrigationImpact[1]
		fmt.Fprintf(&b, "\n%s irrigation improves yield by approximately %.1f%% compared to %s systems under similar crop and seasonal conditions.\n",
			best.Value, set.Analytics.IrrigationImprovementPct, strings.ToLower(second.Value))
	}
	if len(set.Analytics.SeasonImpact) > 0 {
		top := set.Analytics.SeasonImpact[0]
		fmt.Fprintf(&b, "Across all simulated crops, the %s season offers the strongest average yield at %.2f tons per unit area.\n",
			top.Value, top.MeanYield)
	}
	if set.Analytics.ScenarioCount > 1 {
		fmt.Fprintf(&b, "The spread between the best and weakest simulated strategies is around %.2f tons per unit area, highlighting the importance of aligning crop, season, irrigation, and soil choices.\n",
			set.Analytics.YieldSpread)
	}

	b.WriteString("\nTop recommended strategies:\n")
	for i, r := range set.Strategies {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatStrategy(r))
	}

	b.WriteString("\nAdvisory note: these projections are based on historical weather, soil, and recorded management practices. " +
		"Adapt them to your specific field conditions, water availability, and market demand, and review them with local agronomists where possible.")

	analytics := set.Analytics
	return scenario.AdvisoryReport{
		ID:                 core.NewReportID(),
		Status:             scenario.StatusSuccess,
		Narrative:          b.String(),
		Summary:            best,
		CoverageWarning:    set.CoverageWarning,
		ConfidenceAdjusted: set.ConfidenceAdjusted,
		Strategies:         set.Strategies,
		Analytics:          &analytics,
	}
}

func formatStrategy(r scenario.PredictionResult) string {
	return fmt.Sprintf("%s - %s - %s on %s, area %g - %.2f tons/unit (~%.2f tons total) (confidence %.0f%%, risk %s)",
		r.Scenario.Crop, r.Scenario.Season, r.Scenario.Irrigation, r.Scenario.SoilType,
		r.Scenario.Area, r.YieldPerArea, r.EstimatedTotalYield,
		r.Confidence*100, r.Risk)
}

func confidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.6:
		return "moderate"
	default:
		return "limited"
	}
}
