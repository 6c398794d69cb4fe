package aggregation

import (
	"fmt"
	"math"

	"adsdash/internal/domain"
)

const (
	DefaultCPCThreshold = 1.3
	DefaultCPMThreshold = 1.2
	DefaultCurrency     = "R$"
)

// InsightConfig tunes the built-in rules. Zero values fall back to defaults.
type InsightConfig struct {
	// CPCThreshold is the multiple of the mean campaign CPC above which the
	// most expensive campaign is flagged.
	CPCThreshold float64
	// CPMThreshold is the multiple of the account CPM above which the
	// campaign with the highest CPM is flagged.
	CPMThreshold float64
	// Currency prefixes money amounts in messages.
	Currency string
}

func (c InsightConfig) withDefaults() InsightConfig {
	if c.CPCThreshold <= 0 {
		c.CPCThreshold = DefaultCPCThreshold
	}
	if c.CPMThreshold <= 0 {
		c.CPMThreshold = DefaultCPMThreshold
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	return c
}

// RuleInput is what every insight rule sees: the sorted campaign rows and the
// unrounded account totals.
type RuleInput struct {
	Campaigns []domain.CampaignRow
	Totals    Totals
}

// Rule is a pure check that emits at most one message.
type Rule struct {
	Name     string
	Evaluate func(in RuleInput) (domain.InsightMessage, bool)
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules(cfg InsightConfig) []Rule {
	cfg = cfg.withDefaults()
	return []Rule{
		{Name: "best_roas", Evaluate: bestROAS},
		{Name: "high_cpc", Evaluate: highCPC(cfg)},
		{Name: "high_cpm", Evaluate: highCPM(cfg)},
		{Name: "zero_result_spender", Evaluate: zeroResultSpender(cfg)},
	}
}

// GenerateInsights runs every rule in order and collects the messages that
// fire. No rule runs when there are no campaigns.
func GenerateInsights(rules []Rule, in RuleInput) []domain.InsightMessage {
	insights := []domain.InsightMessage{}
	if len(in.Campaigns) == 0 {
		return insights
	}

	for _, rule := range rules {
		if msg, ok := rule.Evaluate(in); ok {
			insights = append(insights, msg)
		}
	}

	return insights
}

func bestROAS(in RuleInput) (domain.InsightMessage, bool) {
	best := maxBy(in.Campaigns, func(c domain.CampaignRow) float64 { return valueOrZero(c.ROAS) })
	if valueOrZero(best.ROAS) == 0 {
		return domain.InsightMessage{}, false
	}

	return domain.InsightMessage{
		Type: domain.InsightSuccess,
		Message: fmt.Sprintf(
			"%s has the best ROAS (%.2f). Consider increasing its budget.",
			best.CampaignName, *best.ROAS,
		),
	}, true
}

func highCPC(cfg InsightConfig) func(RuleInput) (domain.InsightMessage, bool) {
	return func(in RuleInput) (domain.InsightMessage, bool) {
		var sum float64
		var n int
		for _, c := range in.Campaigns {
			if c.CPC != nil {
				sum += *c.CPC
				n++
			}
		}

		var mean float64
		if n > 0 {
			mean = sum / float64(n)
		}

		worst := maxBy(in.Campaigns, func(c domain.CampaignRow) float64 { return valueOrZero(c.CPC) })
		cpc := valueOrZero(worst.CPC)
		if cpc == 0 || mean == 0 || cpc <= mean*cfg.CPCThreshold {
			return domain.InsightMessage{}, false
		}

		return domain.InsightMessage{
			Type: domain.InsightWarning,
			Message: fmt.Sprintf(
				"%s has a CPC of %s %.2f, more than %d%% above the campaign average. Test new creatives or targeting.",
				worst.CampaignName, cfg.Currency, cpc, markupPercent(cfg.CPCThreshold),
			),
		}, true
	}
}

func highCPM(cfg InsightConfig) func(RuleInput) (domain.InsightMessage, bool) {
	return func(in RuleInput) (domain.InsightMessage, bool) {
		if in.Totals.Impressions <= 0 {
			return domain.InsightMessage{}, false
		}

		accountCPM := in.Totals.Spend / float64(in.Totals.Impressions) * 1000
		worst := maxBy(in.Campaigns, func(c domain.CampaignRow) float64 { return valueOrZero(c.CPM) })
		cpm := valueOrZero(worst.CPM)
		if cpm == 0 || cpm <= accountCPM*cfg.CPMThreshold {
			return domain.InsightMessage{}, false
		}

		return domain.InsightMessage{
			Type: domain.InsightWarning,
			Message: fmt.Sprintf(
				"CPM of %s (%s %.2f) is well above the account average of %s %.2f. Review targeting or frequency.",
				worst.CampaignName, cfg.Currency, cpm, cfg.Currency, round2(accountCPM),
			),
		}, true
	}
}

func zeroResultSpender(cfg InsightConfig) func(RuleInput) (domain.InsightMessage, bool) {
	return func(in RuleInput) (domain.InsightMessage, bool) {
		heaviest := maxBy(in.Campaigns, func(c domain.CampaignRow) float64 { return c.Spend })
		if heaviest.Spend <= 0 || heaviest.Results != 0 {
			return domain.InsightMessage{}, false
		}

		return domain.InsightMessage{
			Type: domain.InsightInfo,
			Message: fmt.Sprintf(
				"%s spent %s %.2f without any measurable results. Review its optimization.",
				heaviest.CampaignName, cfg.Currency, heaviest.Spend,
			),
		}, true
	}
}

// maxBy returns the row with the largest key; the first one wins on ties.
// rows must not be empty.
func maxBy(rows []domain.CampaignRow, key func(domain.CampaignRow) float64) domain.CampaignRow {
	best := rows[0]
	bestKey := key(best)
	for _, r := range rows[1:] {
		if k := key(r); k > bestKey {
			best, bestKey = r, k
		}
	}
	return best
}

func markupPercent(threshold float64) int {
	return int(math.Round((threshold - 1) * 100))
}
