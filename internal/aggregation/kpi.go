package aggregation

import (
	"adsdash/internal/domain"
)

// BuildKPIs sums every record and derives the account-wide ratios. The raw,
// unrounded totals are returned alongside for the insight rules.
func (e *Engine) BuildKPIs(records []domain.RawInsight) (domain.KPIs, Totals) {
	var totals Totals
	for _, r := range records {
		totals.Add(e.normalizer.Normalize(r))
	}

	ratios := DeriveRatios(totals.Spend, totals.Clicks, totals.Impressions, totals.Revenue)

	kpis := domain.KPIs{
		Spend:       round2(totals.Spend),
		Revenue:     revenueOrNil(totals.Revenue),
		ROAS:        ratios.ROAS,
		Clicks:      totals.Clicks,
		Impressions: totals.Impressions,
		Reach:       totals.Reach,
		CTR:         ratios.CTR,
		CPC:         ratios.CPC,
		CPM:         ratios.CPM,
		Results:     totals.Results,
	}

	return kpis, totals
}
