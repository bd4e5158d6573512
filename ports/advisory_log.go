package ports

import (
	"context"

	"agrosim/domain/scenario"
)

// AdvisoryLog records issued advisories for callers that choose to keep
// them. Recording is best-effort: the engine logs failures and keeps going,
// a request never fails because its advisory could not be stored.
type AdvisoryLog interface {
	Record(ctx context.Context, report scenario.AdvisoryReport) error
}

// NopAdvisoryLog discards every report. Default when no DATABASE_URL is set.
type NopAdvisoryLog struct{}

func (NopAdvisoryLog) Record(ctx context.Context, report scenario.AdvisoryReport) error {
	return nil
}
