package core

import (
	"github.com/google/uuid"
)

// ReportID uniquely identifies one issued advisory report
type ReportID string

// RequestID correlates log lines belonging to one simulation request
type RequestID string

// NewReportID generates a new unique report identifier
func NewReportID() ReportID {
	return ReportID(uuid.New().String())
}

// NewRequestID generates a new unique request identifier
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}
