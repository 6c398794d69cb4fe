package aggregation

import (
	"sort"

	"adsdash/internal/domain"
)

// BuildTimeSeries groups records by date_start and returns one point per day
// in ascending date order. Records without a date share the "" bucket.
func (e *Engine) BuildTimeSeries(records []domain.RawInsight) []domain.TimeSeriesPoint {
	byDate := make(map[string]*Totals)

	for _, r := range records {
		day := toText(r.DateStart)
		bucket, ok := byDate[day]
		if !ok {
			bucket = &Totals{}
			byDate[day] = bucket
		}
		bucket.Add(e.normalizer.Normalize(r))
	}

	days := make([]string, 0, len(byDate))
	for day := range byDate {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]domain.TimeSeriesPoint, 0, len(days))
	for _, day := range days {
		bucket := byDate[day]
		series = append(series, domain.TimeSeriesPoint{
			Date:        day,
			Spend:       round2(bucket.Spend),
			Clicks:      bucket.Clicks,
			Impressions: bucket.Impressions,
			Reach:       bucket.Reach,
			Results:     bucket.Results,
			Revenue:     revenueOrNil(bucket.Revenue),
		})
	}

	return series
}
