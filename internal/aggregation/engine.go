// Package aggregation turns raw campaign/day insight records into dashboard
// KPIs, a daily time series, a campaign leaderboard and advisory messages.
//
// Everything here is a pure function of its input. An Engine is immutable
// once built and can be shared between goroutines.
package aggregation

import (
	"adsdash/internal/domain"
)

// Config is the startup configuration of an Engine.
type Config struct {
	// ConversionActions overrides DefaultConversionActions when non-empty.
	ConversionActions []string
	Insights          InsightConfig
}

type Engine struct {
	normalizer  Normalizer
	conversions ConversionSet
	rules       []Rule
}

func NewEngine(cfg Config) *Engine {
	conversions := NewConversionSet(cfg.ConversionActions...)
	return &Engine{
		normalizer:  NewNormalizer(conversions),
		conversions: conversions,
		rules:       DefaultRules(cfg.Insights),
	}
}

// ConversionActions lists the action types this engine counts, sorted.
func (e *Engine) ConversionActions() []string {
	return e.conversions.Types()
}

// Summarize builds the full dashboard for one record set. It never fails;
// malformed fields count as zero and an empty input yields empty lists.
func (e *Engine) Summarize(records []domain.RawInsight) domain.DashboardSummary {
	kpis, totals := e.BuildKPIs(records)
	timeseries := e.BuildTimeSeries(records)
	campaigns := e.BuildCampaignRows(records)
	insights := GenerateInsights(e.rules, RuleInput{Campaigns: campaigns, Totals: totals})

	return domain.DashboardSummary{
		KPIs:       kpis,
		Timeseries: timeseries,
		Campaigns:  campaigns,
		Insights:   insights,
	}
}
