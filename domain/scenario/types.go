package scenario

import (
	"fmt"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
)

// Scenario is a concrete planting configuration - the unit of prediction.
// Immutable value object; categorical fields are catalog-normalized.
type Scenario struct {
	District   string  `json:"district"`
	Crop       string  `json:"crop"`
	Season     string  `json:"season"`
	SoilType   string  `json:"soil_type"`
	Irrigation string  `json:"irrigation"`
	Area       float64 `json:"area"`
}

// Key returns a deterministic string key in catalog-declared dimension
// order. Used as the final ranking tie-break so repeated runs on identical
// input produce an identical order.
func (s Scenario) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%g",
		s.District, s.Crop, s.Season, s.SoilType, s.Irrigation, s.Area)
}

// CombinationKey returns the categorical tuple excluding area.
func (s Scenario) CombinationKey() corpus.CombinationKey {
	return corpus.CombinationKey{
		Crop:       s.Crop,
		Season:     s.Season,
		SoilType:   s.SoilType,
		Irrigation: s.Irrigation,
	}
}

// RiskLevel classifies the spread of historical yields behind a prediction
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// PredictionResult is one calibrated yield prediction. Derived per request,
// never stored.
// INVARIANT: EstimatedTotalYield == YieldPerArea * Scenario.Area.
type PredictionResult struct {
	Scenario            Scenario  `json:"scenario"`
	YieldPerArea        float64   `json:"predicted_yield"`
	EstimatedTotalYield float64   `json:"estimated_total_yield"`
	Confidence          float64   `json:"confidence"`
	Risk                RiskLevel `json:"risk_level"`

	// Observed marks combinations with evidentiary support in the corpus.
	Observed bool `json:"observed"`
}

// DimensionImpact aggregates predicted yield over one dimension value
// (e.g. mean yield across all Drip scenarios).
type DimensionImpact struct {
	Value     string  `json:"value"`
	MeanYield float64 `json:"mean_yield"`
	Count     int     `json:"count"`
}

// Analytics summarizes a ranked batch for the advisory composer.
type Analytics struct {
	ScenarioCount int `json:"scenario_count"`

	IrrigationImpact []DimensionImpact `json:"irrigation_impact,omitempty"`
	SeasonImpact     []DimensionImpact `json:"season_impact,omitempty"`

	// IrrigationImprovementPct compares the best irrigation method against
	// the second best; valid only when HasIrrigationComparison is set.
	IrrigationImprovementPct float64 `json:"irrigation_improvement_pct,omitempty"`
	HasIrrigationComparison  bool    `json:"has_irrigation_comparison"`

	BestYield   float64 `json:"best_yield"`
	WorstYield  float64 `json:"worst_yield"`
	YieldSpread float64 `json:"yield_spread"`

	LowestRisk *PredictionResult `json:"lowest_risk,omitempty"`
}

// RankedStrategySet is an ordered prediction sequence plus batch-level
// coverage flags.
// INVARIANT: Strategies is non-increasing in YieldPerArea; ties break by
// descending Confidence, then ascending Scenario.Key().
type RankedStrategySet struct {
	Strategies         []PredictionResult `json:"strategies"`
	CoverageWarning    bool               `json:"coverage_warning"`
	ConfidenceAdjusted bool               `json:"confidence_adjusted"`
	Analytics          Analytics          `json:"analytics"`
}

// Best returns the top strategy, or false when the set is empty.
func (r RankedStrategySet) Best() (PredictionResult, bool) {
	if len(r.Strategies) == 0 {
		return PredictionResult{}, false
	}
	return r.Strategies[0], true
}

// Status tags an advisory as model-backed or heuristic.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFallback Status = "fallback"
)

// AdvisoryReport is the engine's external output. Ephemeral; the engine
// never persists it itself.
type AdvisoryReport struct {
	ID                 core.ReportID    `json:"id"`
	Status             Status           `json:"status"`
	Narrative          string           `json:"advisory"`
	Summary            PredictionResult `json:"summary"`
	CoverageWarning    bool             `json:"coverage_warning"`
	ConfidenceAdjusted bool             `json:"confidence_adjusted"`

	// Strategies and Analytics carry the ranked detail behind the narrative.
	// Empty on fallback advisories.
	Strategies []PredictionResult `json:"top_strategies,omitempty"`
	Analytics  *Analytics         `json:"analytics,omitempty"`
}
