package simulation

import (
	"sort"

	"agrosim/domain/scenario"
)

// riskOrder maps risk levels to sort weight for lowest-risk selection.
var riskOrder = map[scenario.RiskLevel]int{
	scenario.RiskLow:      0,
	scenario.RiskModerate: 1,
	scenario.RiskHigh:     2,
}

// Rank orders calibrated predictions and selects the top-K strategies.
//
// Sort key: (-YieldPerArea, -Confidence, Scenario.Key()). The scenario key
// tie-break guarantees a total, reproducible order: repeated runs on
// identical input produce an identical sequence.
func Rank(results []scenario.PredictionResult, topK int, coverageWarning, confidenceAdjusted bool) scenario.RankedStrategySet {
	ordered := make([]scenario.PredictionResult, len(results))
	copy(ordered, results)

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.YieldPerArea != b.YieldPerArea {
			return a.YieldPerArea > b.YieldPerArea
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Scenario.Key() < b.Scenario.Key()
	})

	analytics := buildAnalytics(ordered)

	if topK > 0 && len(ordered) > topK {
		ordered = ordered[:topK]
	}

	return scenario.RankedStrategySet{
		Strategies:         ordered,
		CoverageWarning:    coverageWarning,
		ConfidenceAdjusted: confidenceAdjusted,
		Analytics:          analytics,
	}
}

// buildAnalytics computes the impact summaries the advisory composer cites:
// per-irrigation and per-season mean yields, the best-vs-second irrigation
// improvement, the best/worst spread, and the lowest-risk strategy.
func buildAnalytics(ordered []scenario.PredictionResult) scenario.Analytics {
	a := scenario.Analytics{ScenarioCount: len(ordered)}
	if len(ordered) == 0 {
		return a
	}

	a.BestYield = ordered[0].YieldPerArea
	a.WorstYield = ordered[len(ordered)-1].YieldPerArea
	a.YieldSpread = a.BestYield - a.WorstYield

	a.IrrigationImpact = dimensionImpact(ordered, func(r scenario.PredictionResult) string {
		return r.Scenario.Irrigation
	})
	a.SeasonImpact = dimensionImpact(ordered, func(r scenario.PredictionResult) string {
		return r.Scenario.Season
	})

	if len(a.IrrigationImpact) >= 2 && a.IrrigationImpact[1].MeanYield > 0 {
		best, second := a.IrrigationImpact[0], a.IrrigationImpact[1]
		a.IrrigationImprovementPct = (best.MeanYield - second.MeanYield) / second.MeanYield * 100
		a.HasIrrigationComparison = true
	}

	lowest := ordered[0]
	for _, r := range ordered[1:] {
		if riskOrder[r.Risk] < riskOrder[lowest.Risk] {
			lowest = r
		}
	}
	a.LowestRisk = &lowest
	return a
}

// dimensionImpact groups predictions by one dimension value and sorts the
// groups by descending mean yield, value ascending on ties.
func dimensionImpact(results []scenario.PredictionResult, valueOf func(scenario.PredictionResult) string) []scenario.DimensionImpact {
	type acc struct {
		sum   float64
		count int
	}
	groups := map[string]*acc{}
	for _, r := range results {
		v := valueOf(r)
		if v == "" {
			continue
		}
		g := groups[v]
		if g == nil {
			g = &acc{}
			groups[v] = g
		}
		g.sum += r.YieldPerArea
		g.count++
	}

	impacts := make([]scenario.DimensionImpact, 0, len(groups))
	for v, g := range groups {
		impacts = append(impacts, scenario.DimensionImpact{
			Value:     v,
			MeanYield: g.sum / float64(g.count),
			Count:     g.count,
		})
	}
	sort.Slice(impacts, func(i, j int) bool {
		if impacts[i].MeanYield != impacts[j].MeanYield {
			return impacts[i].MeanYield > impacts[j].MeanYield
		}
		return impacts[i].Value < impacts[j].Value
	})
	return impacts
}
