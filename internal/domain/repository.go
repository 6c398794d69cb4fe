package domain

import (
	"context"
)

// InsightsSource yields raw campaign/day records for a reporting window.
type InsightsSource interface {
	FetchInsights(ctx context.Context, period DateRange) ([]RawInsight, error)
}
