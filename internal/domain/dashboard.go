package domain

// InsightType is the severity tag of a diagnostic message.
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// KPIs are account-wide totals plus derived ratios. Nullable ratios are nil
// when their denominator is zero; Revenue is nil when it sums to zero.
type KPIs struct {
	Spend       float64  `json:"spend"`
	Revenue     *float64 `json:"revenue"`
	ROAS        *float64 `json:"roas"`
	Clicks      int64    `json:"clicks"`
	Impressions int64    `json:"impressions"`
	Reach       int64    `json:"reach"`
	CTR         *float64 `json:"ctr"`
	CPC         *float64 `json:"cpc"`
	CPM         *float64 `json:"cpm"`
	Results     int64    `json:"results"`
}

// TimeSeriesPoint holds the summed fields of a single day. No ratios.
type TimeSeriesPoint struct {
	Date        string   `json:"date"`
	Spend       float64  `json:"spend"`
	Clicks      int64    `json:"clicks"`
	Impressions int64    `json:"impressions"`
	Reach       int64    `json:"reach"`
	Results     int64    `json:"results"`
	Revenue     *float64 `json:"revenue"`
}

// CampaignRow is one leaderboard entry.
type CampaignRow struct {
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Spend        float64  `json:"spend"`
	Clicks       int64    `json:"clicks"`
	Impressions  int64    `json:"impressions"`
	Reach        int64    `json:"reach"`
	Results      int64    `json:"results"`
	Revenue      *float64 `json:"revenue"`
	CTR          *float64 `json:"ctr"`
	CPC          *float64 `json:"cpc"`
	CPM          *float64 `json:"cpm"`
	ROAS         *float64 `json:"roas"`
}

type InsightMessage struct {
	Type    InsightType `json:"type"`
	Message string      `json:"message"`
}

// DashboardSummary is the response of a single summarize call.
type DashboardSummary struct {
	KPIs       KPIs              `json:"kpis"`
	Timeseries []TimeSeriesPoint `json:"timeseries"`
	Campaigns  []CampaignRow     `json:"campaigns"`
	Insights   []InsightMessage  `json:"insights"`
}

// DataSource names where a record set came from.
type DataSource string

const (
	SourceMeta     DataSource = "meta"
	SourceFallback DataSource = "mock"
	// SourceRequest marks records posted by the caller.
	SourceRequest DataSource = "request"
)

// InsightsResult is a raw record set together with its origin. Error carries
// the upstream failure when the fallback payload was substituted.
type InsightsResult struct {
	Data   []RawInsight `json:"data"`
	Source DataSource   `json:"source,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type SummaryResult struct {
	Summary DashboardSummary
	Source  DataSource
	Error   string
	Records int
}
