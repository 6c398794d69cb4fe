package aggregation

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Ratios are the derived metrics of a totals bucket, already rounded for
// output. CTR is a percentage.
type Ratios struct {
	CTR  *float64
	CPC  *float64
	CPM  *float64
	ROAS *float64
}

// DeriveRatios computes ctr, cpc, cpm and roas with a null-on-zero-denominator
// policy. ROAS is also null when revenue is zero.
func DeriveRatios(spend float64, clicks, impressions int64, revenue float64) Ratios {
	var r Ratios

	if impressions > 0 {
		r.CTR = roundedPtr(float64(clicks) / float64(impressions) * 100)
		r.CPM = roundedPtr(spend / float64(impressions) * 1000)
	}
	if clicks > 0 {
		r.CPC = roundedPtr(spend / float64(clicks))
	}
	if spend > 0 && revenue > 0 {
		r.ROAS = roundedPtr(revenue / spend)
	}

	return r
}

// round2 rounds the exact binary value of v to cents, ties to even, so 1.005
// (stored as 1.00499...) becomes 1.00 and 0.125 becomes 0.12.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, _ := decimal.RequireFromString(strconv.FormatFloat(v, 'f', 2, 64)).Float64()
	return rounded
}

func roundedPtr(v float64) *float64 {
	rounded := round2(v)
	return &rounded
}

// revenueOrNil reports a zero revenue sum as null.
func revenueOrNil(revenue float64) *float64 {
	if revenue == 0 {
		return nil
	}
	return roundedPtr(revenue)
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
