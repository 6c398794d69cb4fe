package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adsdash/internal/aggregation"
	"adsdash/internal/domain"
	"adsdash/pkg/logger"
	"adsdash/pkg/metrics"
)

// Fallback reasons reported in metrics.
const (
	reasonNotConfigured = "not_configured"
	reasonUpstream      = "upstream_error"
	reasonFetch         = "fetch_error"
)

type DashboardService struct {
	primary  domain.InsightsSource
	fallback domain.InsightsSource
	engine   *aggregation.Engine
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewDashboardService wires the live source, the sample source used when the
// live one fails, and the aggregation engine. fallback may be nil.
func NewDashboardService(
	primary domain.InsightsSource,
	fallback domain.InsightsSource,
	engine *aggregation.Engine,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *DashboardService {
	return &DashboardService{
		primary:  primary,
		fallback: fallback,
		engine:   engine,
		logger:   logger,
		metrics:  metrics,
	}
}

// Summary fetches the period and aggregates it. An empty record set, live or
// substituted, is reported as domain.ErrNoInsights.
func (s *DashboardService) Summary(ctx context.Context, period domain.DateRange) (*domain.SummaryResult, error) {
	fetched, err := s.fetch(ctx, period)
	if err != nil {
		return nil, err
	}

	if len(fetched.Data) == 0 {
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"period": period.String(),
			"source": fetched.Source,
		}).Warn("No insights available for dashboard summary")
		return nil, domain.ErrNoInsights
	}

	summary := s.summarize(ctx, fetched.Data, fetched.Source)

	return &domain.SummaryResult{
		Summary: summary,
		Source:  fetched.Source,
		Error:   fetched.Error,
		Records: len(fetched.Data),
	}, nil
}

// RawInsights returns the records of the period as fetched, with the same
// fallback policy as Summary. An empty list is not an error here.
func (s *DashboardService) RawInsights(ctx context.Context, period domain.DateRange) (*domain.InsightsResult, error) {
	return s.fetch(ctx, period)
}

// SummarizeRecords aggregates caller-supplied records without fetching.
func (s *DashboardService) SummarizeRecords(ctx context.Context, records []domain.RawInsight) domain.DashboardSummary {
	return s.summarize(ctx, records, domain.SourceRequest)
}

func (s *DashboardService) summarize(ctx context.Context, records []domain.RawInsight, source domain.DataSource) domain.DashboardSummary {
	start := time.Now()
	summary := s.engine.Summarize(records)
	duration := time.Since(start)

	s.metrics.RecordSummary(string(source), len(records), duration)
	for _, insight := range summary.Insights {
		s.metrics.RecordInsight(string(insight.Type))
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"source":    source,
		"records":   len(records),
		"campaigns": len(summary.Campaigns),
		"days":      len(summary.Timeseries),
		"insights":  len(summary.Insights),
		"duration":  duration,
	}).Info("Dashboard summary built")

	return summary
}

func (s *DashboardService) fetch(ctx context.Context, period domain.DateRange) (*domain.InsightsResult, error) {
	log := s.logger.WithContext(ctx).WithField("period", period.String())

	records, err := s.primary.FetchInsights(ctx, period)
	if err == nil {
		return &domain.InsightsResult{Data: nonNil(records), Source: domain.SourceMeta}, nil
	}

	if s.fallback == nil {
		return nil, fmt.Errorf("failed to fetch insights: %w", err)
	}

	reason := fallbackReason(err)
	s.metrics.RecordFallback(reason)
	log.WithError(err).WithField("reason", reason).Warn("Live insights unavailable, using fallback payload")

	sample, fbErr := s.fallback.FetchInsights(ctx, period)
	if fbErr != nil {
		log.WithError(fbErr).Error("Fallback insights source failed")
		return nil, fmt.Errorf("failed to fetch fallback insights: %w", errors.Join(err, fbErr))
	}

	return &domain.InsightsResult{
		Data:   nonNil(sample),
		Source: domain.SourceFallback,
		Error:  err.Error(),
	}, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSourceNotConfigured):
		return reasonNotConfigured
	case errors.Is(err, domain.ErrUpstream):
		return reasonUpstream
	default:
		return reasonFetch
	}
}

func nonNil(records []domain.RawInsight) []domain.RawInsight {
	if records == nil {
		return []domain.RawInsight{}
	}
	return records
}
