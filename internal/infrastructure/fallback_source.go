package infrastructure

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"adsdash/internal/domain"
	"adsdash/pkg/logger"
)

//go:embed fallback/meta_insights_sample.json
var embeddedSample []byte

const embeddedOrigin = "embedded"

// FallbackSource serves a fixed sample payload. The dashboard uses it when
// the live ads API is unavailable so the frontend always has data to draw.
type FallbackSource struct {
	records []domain.RawInsight
	origin  string
}

// NewFallbackSource parses the payload at path, or the embedded sample when
// path is empty. The file is read once.
func NewFallbackSource(path string, logger *logger.Logger) (*FallbackSource, error) {
	payload, origin := embeddedSample, embeddedOrigin
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback payload: %w", err)
		}
		payload, origin = b, path
	}

	records, err := domain.ParseInsightsPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback payload %s: %w", origin, err)
	}

	logger.WithFields(map[string]any{
		"origin":  origin,
		"records": len(records),
	}).Info("Loaded fallback insights payload")

	return &FallbackSource{records: records, origin: origin}, nil
}

// FetchInsights returns the whole sample. The period is ignored.
func (s *FallbackSource) FetchInsights(_ context.Context, _ domain.DateRange) ([]domain.RawInsight, error) {
	return slices.Clone(s.records), nil
}

func (s *FallbackSource) Origin() string {
	return s.origin
}
