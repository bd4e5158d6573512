package simulation

import (
	"math"

	"agrosim/domain/corpus"
	"agrosim/domain/scenario"
	"agrosim/internal/catalog"
	"agrosim/internal/config"
)

// Calibrator fills confidence and risk on raw predictions from corpus
// coverage and historical yield spread. Uncertainty is surfaced as
// first-class fields, never hidden.
type Calibrator struct {
	catalog *catalog.Catalog
	cfg     config.CalibrationConfig
}

// NewCalibrator creates a calibrator over the option catalog.
func NewCalibrator(cat *catalog.Catalog, cfg config.CalibrationConfig) *Calibrator {
	return &Calibrator{catalog: cat, cfg: cfg}
}

// CalibrateBatch calibrates every result in place-order and reports whether
// any confidence was down-weighted for sparse coverage.
func (c *Calibrator) CalibrateBatch(results []scenario.PredictionResult, coverageWarning bool) ([]scenario.PredictionResult, bool) {
	out := make([]scenario.PredictionResult, len(results))
	adjusted := false
	for i, r := range results {
		calibrated, wasAdjusted := c.Calibrate(r, coverageWarning)
		out[i] = calibrated
		adjusted = adjusted || wasAdjusted
	}
	return out, adjusted
}

// Calibrate fills confidence and risk for one prediction.
//
// Confidence starts at the observed base when the combination has corpus
// support, decays with row sparsity down to the configured floor, and takes
// a further batch-level penalty when the whole candidate set is
// extrapolated. Risk follows the coefficient of variation of matching
// historical yields; no matching rows means High.
func (c *Calibrator) Calibrate(r scenario.PredictionResult, coverageWarning bool) (scenario.PredictionResult, bool) {
	key := r.Scenario.CombinationKey()
	r.Observed = c.catalog.IsObserved(key)

	base := c.cfg.BaseObserved
	if !r.Observed {
		base = c.cfg.BaseExtrapolated
	}

	density := 1.0
	if sat := c.cfg.DensitySaturation; sat > 0 {
		density = math.Min(1, float64(c.catalog.MatchCount(key))/float64(sat))
	}
	factor := math.Max(c.cfg.ConfidenceFloor/base, density)

	confidence := base * factor
	if coverageWarning {
		confidence *= c.cfg.CoveragePenalty
	}
	confidence = math.Max(0, math.Min(1, confidence))

	adjusted := confidence < base-1e-12

	r.Confidence = confidence
	r.Risk = c.riskLevel(key)
	return r, adjusted
}

func (c *Calibrator) riskLevel(key corpus.CombinationKey) scenario.RiskLevel {
	_, cv, ok := c.catalog.YieldSpread(key)
	switch {
	case !ok:
		return scenario.RiskHigh
	case cv <= c.cfg.RiskLowCV:
		return scenario.RiskLow
	case cv >= c.cfg.RiskHighCV:
		return scenario.RiskHigh
	default:
		return scenario.RiskModerate
	}
}
