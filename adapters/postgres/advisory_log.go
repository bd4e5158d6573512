package postgres

import (
	"context"
	"fmt"

	"agrosim/domain/scenario"
	"agrosim/ports"

	"github.com/jmoiron/sqlx"
)

// advisoryLog implements the AdvisoryLog interface
type advisoryLog struct {
	db *sqlx.DB
}

// NewAdvisoryLog creates a Postgres-backed advisory log
func NewAdvisoryLog(db *sqlx.DB) ports.AdvisoryLog {
	return &advisoryLog{db: db}
}

// Record inserts one issued advisory. Failures surface to the caller, which
// treats them as best-effort (logged, never request-fatal).
func (l *advisoryLog) Record(ctx context.Context, report scenario.AdvisoryReport) error {
	query := `INSERT INTO advisory_reports (
		id, status, district, crop, season, soil_type, irrigation, area,
		predicted_yield, estimated_total_yield, confidence, risk_level,
		coverage_warning, confidence_adjusted, narrative, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW()
	)`

	s := report.Summary.Scenario
	_, err := l.db.ExecContext(ctx, query,
		string(report.ID), string(report.Status),
		s.District, s.Crop, s.Season, s.SoilType, s.Irrigation, s.Area,
		report.Summary.YieldPerArea, report.Summary.EstimatedTotalYield,
		report.Summary.Confidence, string(report.Summary.Risk),
		report.CoverageWarning, report.ConfidenceAdjusted, report.Narrative,
	)
	if err != nil {
		return fmt.Errorf("failed to record advisory report: %w", err)
	}
	return nil
}
