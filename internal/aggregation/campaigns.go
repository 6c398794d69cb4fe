package aggregation

import (
	"sort"

	"adsdash/internal/domain"
)

const (
	UnknownCampaignID   = "unknown"
	UnnamedCampaignName = "Unnamed campaign"
)

type campaignBucket struct {
	id     string
	name   string
	totals Totals
}

// BuildCampaignRows groups records by campaign id and returns one row per
// campaign sorted by spend, highest first. Ties keep first-seen order.
//
// The name comes from the first record of each campaign; later rows with a
// different name for the same id do not rename it.
func (e *Engine) BuildCampaignRows(records []domain.RawInsight) []domain.CampaignRow {
	var buckets []*campaignBucket
	byID := make(map[string]*campaignBucket)

	for _, r := range records {
		id := toText(r.CampaignID)
		if id == "" {
			id = UnknownCampaignID
		}

		bucket, ok := byID[id]
		if !ok {
			name := toText(r.CampaignName)
			if name == "" {
				name = UnnamedCampaignName
			}
			bucket = &campaignBucket{id: id, name: name}
			byID[id] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.totals.Add(e.normalizer.Normalize(r))
	}

	rows := make([]domain.CampaignRow, 0, len(buckets))
	for _, b := range buckets {
		t := b.totals
		ratios := DeriveRatios(t.Spend, t.Clicks, t.Impressions, t.Revenue)
		rows = append(rows, domain.CampaignRow{
			CampaignID:   b.id,
			CampaignName: b.name,
			Spend:        round2(t.Spend),
			Clicks:       t.Clicks,
			Impressions:  t.Impressions,
			Reach:        t.Reach,
			Results:      t.Results,
			Revenue:      revenueOrNil(t.Revenue),
			CTR:          ratios.CTR,
			CPC:          ratios.CPC,
			CPM:          ratios.CPM,
			ROAS:         ratios.ROAS,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Spend > rows[j].Spend
	})

	return rows
}
