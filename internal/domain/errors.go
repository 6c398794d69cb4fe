package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotConfigured = errors.New("insights source not configured")
	ErrUpstream            = errors.New("upstream ads API error")
	ErrNoInsights          = errors.New("no insights data available")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

// UpstreamError is returned when the ads API answers with a non-200 status
// or an error object in the body.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ads API returned status %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
