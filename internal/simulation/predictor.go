package simulation

import (
	"context"
	"sync"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
	"agrosim/internal"
	"agrosim/internal/features"
	"agrosim/internal/model"

	"golang.org/x/sync/errgroup"
)

// Predictor applies the feature pipeline and yield model to candidate
// batches. The bundle is immutable shared state, so per-candidate
// predictions are pure and run in parallel under a bounded pool.
type Predictor struct {
	bundle  *model.Bundle
	workers int
	log     *internal.Logger
}

// NewPredictor creates a batch predictor. workers bounds the parallel pool.
func NewPredictor(bundle *model.Bundle, workers int, log *internal.Logger) *Predictor {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Predictor{bundle: bundle, workers: workers, log: log}
}

// Bundle exposes the loaded model bundle (read-only).
func (p *Predictor) Bundle() *model.Bundle {
	return p.bundle
}

// PredictAll predicts yield per area for every candidate. Confidence and
// risk stay zero-valued here; the calibrator fills them. A malformed
// candidate fails only itself: its slot is dropped and the batch continues.
// Result order follows candidate order regardless of scheduling.
func (p *Predictor) PredictAll(ctx context.Context, candidates []scenario.Scenario, cov features.Covariates) ([]scenario.PredictionResult, error) {
	if p.bundle == nil {
		return nil, core.ErrModelUnavailable
	}
	if len(candidates) == 0 {
		return nil, core.ErrNoCandidates
	}

	slots := make([]*scenario.PredictionResult, len(candidates))
	var mu sync.Mutex
	var failed int

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			yield, err := p.bundle.Predict(cand, cov)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				p.log.Warn("skipping candidate %s: %v", cand.Key(), err)
				return nil
			}
			slots[i] = &scenario.PredictionResult{
				Scenario:            cand,
				YieldPerArea:        yield,
				EstimatedTotalYield: yield * cand.Area,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, core.NewPredictionError("batch", err)
	}

	results := make([]scenario.PredictionResult, 0, len(candidates))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	if failed > 0 {
		p.log.Warn("batch predictor dropped %d of %d candidates", failed, len(candidates))
	}
	if len(results) == 0 {
		return nil, core.ErrNoCandidates
	}
	return results, nil
}
