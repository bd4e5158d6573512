package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Corpus and catalog errors (fatal at startup, never per-request)
	ErrCorpusEmpty     = errors.New("historical corpus is empty")
	ErrCorpusMalformed = errors.New("historical corpus is malformed")
	ErrCatalogEmpty    = errors.New("option catalog has no values")

	// Model artifact errors
	ErrModelUnavailable   = errors.New("model bundle unavailable")
	ErrSchemaMismatch     = errors.New("model feature schema mismatch")
	ErrPredictionFailed   = errors.New("prediction failed")
	ErrDegenerateEstimate = errors.New("non-positive yield estimate")

	// Request errors (recovered locally, never surfaced as failures)
	ErrNoCandidates     = errors.New("no valid candidate scenarios")
	ErrUnknownValue     = errors.New("value not present in option catalog")
	ErrInvalidArea      = errors.New("area must be a positive number")
	ErrUnknownDimension = errors.New("unknown scenario dimension")
)

// Error constructors with context
func NewUnknownValueError(dimension, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownValue, dimension, value)
}

func NewSchemaMismatchError(detail string) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, detail)
}

func NewPredictionError(scenarioKey string, err error) error {
	return fmt.Errorf("%w for scenario %s: %v", ErrPredictionFailed, scenarioKey, err)
}

// IsFallbackTrigger reports whether an error must route the request to the
// fallback advisor rather than propagate to the caller.
func IsFallbackTrigger(err error) bool {
	return errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, ErrPredictionFailed) ||
		errors.Is(err, ErrDegenerateEstimate) ||
		errors.Is(err, ErrNoCandidates)
}
