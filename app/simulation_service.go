package app

import (
	"context"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
	"agrosim/internal"
	"agrosim/internal/advisory"
	"agrosim/internal/catalog"
	"agrosim/internal/features"
	"agrosim/internal/simulation"
	"agrosim/ports"
)

// SimulationService orchestrates one simulation request through the
// pipeline: generate candidates, predict, calibrate, rank, compose. Any
// failure after validation, and any non-positive estimate, routes to the
// fallback advisor exactly once; the service never returns an error to the
// transport layer.
//
// All referenced state (catalog, model bundle) is immutable after startup,
// so a single service instance serves concurrent requests without locking.
type SimulationService struct {
	catalog     *catalog.Catalog
	generator   *simulation.Generator
	predictor   *simulation.Predictor // nil when no model bundle is loaded
	calibrator  *simulation.Calibrator
	composer    *advisory.Composer
	fallback    *advisory.FallbackAdvisor
	advisoryLog ports.AdvisoryLog
	topK        int
	log         *internal.Logger
}

// NewSimulationService wires the request pipeline. predictor may be nil
// (degraded mode); every request then resolves through the fallback
// advisor.
func NewSimulationService(
	cat *catalog.Catalog,
	generator *simulation.Generator,
	predictor *simulation.Predictor,
	calibrator *simulation.Calibrator,
	advisoryLog ports.AdvisoryLog,
	topK int,
	log *internal.Logger,
) *SimulationService {
	if advisoryLog == nil {
		advisoryLog = ports.NopAdvisoryLog{}
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	if topK < 1 {
		topK = 5
	}
	return &SimulationService{
		catalog:     cat,
		generator:   generator,
		predictor:   predictor,
		calibrator:  calibrator,
		composer:    advisory.NewComposer(),
		fallback:    advisory.NewFallbackAdvisor(),
		advisoryLog: advisoryLog,
		topK:        topK,
		log:         log,
	}
}

// Options returns the valid option space per dimension, straight from the
// catalog.
func (s *SimulationService) Options() map[string]interface{} {
	return s.catalog.Options()
}

// Simulate runs the full pipeline for a possibly-partial request. It always
// returns a well-formed advisory; the worst outcome is status "fallback".
func (s *SimulationService) Simulate(ctx context.Context, req simulation.Request, cov features.Covariates) scenario.AdvisoryReport {
	report := s.simulate(ctx, req, cov)
	s.record(ctx, report)
	return report
}

func (s *SimulationService) simulate(ctx context.Context, req simulation.Request, cov features.Covariates) scenario.AdvisoryReport {
	fbCrop, fbArea := fallbackInputs(req)

	if s.predictor == nil {
		s.log.Warn("simulate: no model bundle loaded, serving fallback advisory")
		return s.fallback.Advise(req.District, fbCrop, fbArea)
	}

	candidates, err := s.generator.Generate(req)
	for _, w := range candidates.Warnings {
		s.log.Warn("simulate: %s", w)
	}
	if err != nil {
		s.log.Warn("simulate: candidate generation failed: %v", err)
		return s.fallback.Advise(req.District, fbCrop, fbArea)
	}

	results, err := s.predictor.PredictAll(ctx, candidates.Scenarios, cov)
	if err != nil {
		if core.IsFallbackTrigger(err) {
			s.log.Warn("simulate: %v, serving fallback", err)
		} else {
			s.log.Error("simulate: batch prediction failed: %v", err)
		}
		return s.fallback.Advise(req.District, fbCrop, fbArea)
	}

	calibrated, adjusted := s.calibrator.CalibrateBatch(results, candidates.CoverageWarning)
	ranked := simulation.Rank(calibrated, s.topK, candidates.CoverageWarning, adjusted)

	best, ok := ranked.Best()
	if !ok || best.YieldPerArea <= 0 {
		s.log.Warn("simulate: degenerate estimate (best yield %.3f), serving fallback", best.YieldPerArea)
		return s.fallback.Advise(req.District, fbCrop, fbArea)
	}

	district := best.Scenario.District
	return s.composer.Compose(district, ranked)
}

// PredictOne runs the pipeline for a single concrete scenario, optionally
// with caller-observed covariates. Same resilience contract as Simulate.
func (s *SimulationService) PredictOne(ctx context.Context, sc scenario.Scenario, cov features.Covariates) scenario.AdvisoryReport {
	req := simulation.Request{
		District:    sc.District,
		Crops:       []string{sc.Crop},
		Seasons:     []string{sc.Season},
		SoilTypes:   []string{sc.SoilType},
		Irrigations: []string{sc.Irrigation},
		Areas:       []float64{sc.Area},
	}
	return s.Simulate(ctx, req, cov)
}

// record stores the advisory best-effort; storage failure never fails the
// request.
func (s *SimulationService) record(ctx context.Context, report scenario.AdvisoryReport) {
	if err := s.advisoryLog.Record(ctx, report); err != nil {
		s.log.Warn("failed to record advisory %s: %v", report.ID, err)
	}
}

// fallbackInputs picks the crop and area the fallback advisor should quote
// when the pipeline cannot produce a model-backed answer.
func fallbackInputs(req simulation.Request) (string, float64) {
	crop := ""
	if len(req.Crops) > 0 {
		crop = req.Crops[0]
	}
	area := 0.0
	for _, a := range req.Areas {
		if a > 0 {
			area = a
			break
		}
	}
	return crop, area
}
