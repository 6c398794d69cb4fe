package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsdash/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func mixedRuleInput() RuleInput {
	return RuleInput{
		Campaigns: []domain.CampaignRow{
			{CampaignID: "a", CampaignName: "Broad", Spend: 100, Clicks: 10, Impressions: 1000, CPC: fptr(10), CPM: fptr(100), CTR: fptr(1)},
			{CampaignID: "b", CampaignName: "Lookalike", Spend: 10, Clicks: 10, Impressions: 1000, Results: 2,
				Revenue: fptr(50), ROAS: fptr(5), CPC: fptr(1), CPM: fptr(10), CTR: fptr(1)},
			{CampaignID: "c", CampaignName: "Search", Spend: 10, Clicks: 10, Impressions: 1000, Results: 1,
				CPC: fptr(1), CPM: fptr(10), CTR: fptr(1)},
		},
		Totals: Totals{Spend: 120, Clicks: 30, Impressions: 3000, Results: 3, Revenue: 50},
	}
}

func TestGenerateInsights_AllRulesInOrder(t *testing.T) {
	got := GenerateInsights(DefaultRules(InsightConfig{}), mixedRuleInput())

	require.Len(t, got, 4)
	assert.Equal(t, domain.InsightMessage{
		Type:    domain.InsightSuccess,
		Message: "Lookalike has the best ROAS (5.00). Consider increasing its budget.",
	}, got[0])
	assert.Equal(t, domain.InsightMessage{
		Type:    domain.InsightWarning,
		Message: "Broad has a CPC of R$ 10.00, more than 30% above the campaign average. Test new creatives or targeting.",
	}, got[1])
	assert.Equal(t, domain.InsightMessage{
		Type:    domain.InsightWarning,
		Message: "CPM of Broad (R$ 100.00) is well above the account average of R$ 40.00. Review targeting or frequency.",
	}, got[2])
	assert.Equal(t, domain.InsightMessage{
		Type:    domain.InsightInfo,
		Message: "Broad spent R$ 100.00 without any measurable results. Review its optimization.",
	}, got[3])
}

func TestGenerateInsights_NoCampaigns(t *testing.T) {
	got := GenerateInsights(DefaultRules(InsightConfig{}), RuleInput{Totals: Totals{Spend: 10, Impressions: 100}})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateInsights_CustomConfig(t *testing.T) {
	in := RuleInput{
		Campaigns: []domain.CampaignRow{
			{CampaignName: "A", Spend: 12, Results: 1, CPC: fptr(1.2), CPM: fptr(12)},
			{CampaignName: "B", Spend: 10, Results: 1, CPC: fptr(1.0), CPM: fptr(10)},
		},
		Totals: Totals{Spend: 22, Impressions: 2000, Results: 2},
	}

	assert.Empty(t, GenerateInsights(DefaultRules(InsightConfig{}), in))

	got := GenerateInsights(DefaultRules(InsightConfig{CPCThreshold: 1.05, CPMThreshold: 5, Currency: "US$"}), in)
	require.Len(t, got, 1)
	assert.Equal(t, domain.InsightWarning, got[0].Type)
	assert.Equal(t,
		"A has a CPC of US$ 1.20, more than 5% above the campaign average. Test new creatives or targeting.",
		got[0].Message)
}

func TestBestROAS_TieKeepsFirstRow(t *testing.T) {
	in := RuleInput{Campaigns: []domain.CampaignRow{
		{CampaignName: "First", Spend: 20, ROAS: fptr(3)},
		{CampaignName: "Second", Spend: 10, ROAS: fptr(3)},
	}}

	msg, ok := bestROAS(in)
	require.True(t, ok)
	assert.Contains(t, msg.Message, "First")
}

func TestBestROAS_NoRevenue(t *testing.T) {
	_, ok := bestROAS(RuleInput{Campaigns: []domain.CampaignRow{{CampaignName: "A", Spend: 5}}})
	assert.False(t, ok)
}

func TestHighCPC_IgnoresCampaignsWithoutClicks(t *testing.T) {
	// counting the nil rows as zero would drop the mean to 0.85 and flag B.
	in := RuleInput{Campaigns: []domain.CampaignRow{
		{CampaignName: "A", Spend: 50},
		{CampaignName: "B", Spend: 20, CPC: fptr(1.9)},
		{CampaignName: "C", Spend: 10, CPC: fptr(1.5)},
		{CampaignName: "D", Spend: 5},
	}}

	_, ok := highCPC(InsightConfig{}.withDefaults())(in)
	assert.False(t, ok)
}

func TestHighCPC_MeanCountsZeroCPC(t *testing.T) {
	in := RuleInput{Campaigns: []domain.CampaignRow{
		{CampaignName: "A", Spend: 50, CPC: fptr(0)},
		{CampaignName: "B", Spend: 20, CPC: fptr(1.0)},
		{CampaignName: "C", Spend: 10, CPC: fptr(1.2)},
	}}

	got, ok := highCPC(InsightConfig{}.withDefaults())(in)
	require.True(t, ok)
	assert.Contains(t, got.Message, "C has a CPC of R$ 1.20")
}

func TestHighCPM_NoImpressions(t *testing.T) {
	in := RuleInput{
		Campaigns: []domain.CampaignRow{{CampaignName: "A", Spend: 5}},
		Totals:    Totals{Spend: 5},
	}

	_, ok := highCPM(InsightConfig{}.withDefaults())(in)
	assert.False(t, ok)
}

func TestZeroResultSpender_OnlyLooksAtHeaviest(t *testing.T) {
	in := RuleInput{Campaigns: []domain.CampaignRow{
		{CampaignName: "Converts", Spend: 50, Results: 3},
		{CampaignName: "Silent", Spend: 40},
	}}

	_, ok := zeroResultSpender(InsightConfig{}.withDefaults())(in)
	assert.False(t, ok)
}

func TestMarkupPercent(t *testing.T) {
	assert.Equal(t, 30, markupPercent(1.3))
	assert.Equal(t, 20, markupPercent(1.2))
	assert.Equal(t, 5, markupPercent(1.05))
}
