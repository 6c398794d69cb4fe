package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"adsdash/internal/domain"
	"adsdash/pkg/config"
	"adsdash/pkg/logger"
	"adsdash/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const metaAPI = "meta_insights"

// maxErrorBody caps how much of a failed response ends up in error messages.
const maxErrorBody = 4 << 10

var insightFields = []string{
	"campaign_id",
	"campaign_name",
	"date_start",
	"date_stop",
	"impressions",
	"reach",
	"clicks",
	"spend",
	"objective",
	"actions",
	"action_values",
}

// implements domain.InsightsSource against the Graph API insights edge
type MetaClient struct {
	client      *http.Client
	cfg         config.MetaConfig
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
	cache       *cache.Cache
}

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type insightsPage struct {
	Data   []domain.RawInsight `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
	Error *graphError `json:"error"`
}

// NewMetaClient builds a client for one ad account. A zero CacheTTL disables
// the response cache.
func NewMetaClient(cfg config.MetaConfig, logger *logger.Logger, metrics *metrics.Metrics) *MetaClient {
	perSecond := cfg.RateLimitPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	c := &MetaClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}

	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return c
}

// FetchInsights downloads every campaign/day row in period, following cursor
// pagination until the API runs out of pages or MaxRecords is reached.
func (c *MetaClient) FetchInsights(ctx context.Context, period domain.DateRange) ([]domain.RawInsight, error) {
	if !c.cfg.Configured() {
		return nil, domain.ErrSourceNotConfigured
	}

	key := period.String()
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			c.metrics.RecordCacheLookup(metaAPI, true)
			return slices.Clone(cached.([]domain.RawInsight)), nil
		}
		c.metrics.RecordCacheLookup(metaAPI, false)
	}

	start := time.Now()
	records := []domain.RawInsight{}
	after := ""
	pages := 0

	for {
		page, err := c.fetchPage(ctx, period, after)
		if err != nil {
			return nil, err
		}
		pages++
		records = append(records, page.Data...)

		next := page.Paging.Cursors.After
		if len(records) >= c.cfg.MaxRecords || page.Paging.Next == "" || next == "" || next == after {
			break
		}
		after = next
	}

	if len(records) > c.cfg.MaxRecords {
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"fetched": len(records),
			"limit":   c.cfg.MaxRecords,
		}).Warn("Truncating insights to the configured record limit")
		records = records[:c.cfg.MaxRecords]
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"period":   key,
		"pages":    pages,
		"records":  len(records),
		"duration": time.Since(start),
	}).Info("Successfully fetched Meta insights")

	if c.cache != nil {
		c.cache.SetDefault(key, slices.Clone(records))
	}

	return records, nil
}

func (c *MetaClient) fetchPage(ctx context.Context, period domain.DateRange, after string) (*insightsPage, error) {
	start := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure(metaAPI, "rate_limit")
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.insightsURL(period, after), nil)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(metaAPI, "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(metaAPI, "network_error")
		return nil, fmt.Errorf("failed to reach Meta insights API: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.RecordExternalAPICall(metaAPI, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(metaAPI, "read_body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var page insightsPage
	if err := json.Unmarshal(body, &page); err != nil {
		c.metrics.RecordExternalAPIFailure(metaAPI, "json_parse")
		return nil, fmt.Errorf("failed to parse Meta insights: %w", err)
	}

	if page.Error != nil {
		c.metrics.RecordExternalAPICall(metaAPI, "graph_error", duration)
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Message: page.Error.String()}
	}

	c.metrics.RecordExternalAPICall(metaAPI, "success", duration)

	return &page, nil
}

func (c *MetaClient) insightsURL(period domain.DateRange, after string) string {
	timeRange, _ := json.Marshal(struct {
		Since string `json:"since"`
		Until string `json:"until"`
	}{
		Since: period.Since.Format(domain.DateLayout),
		Until: period.Until.Format(domain.DateLayout),
	})

	params := url.Values{}
	params.Set("level", "campaign")
	params.Set("time_increment", "1")
	params.Set("time_range", string(timeRange))
	params.Set("fields", strings.Join(insightFields, ","))
	params.Set("limit", strconv.Itoa(c.cfg.PageSize))
	if after != "" {
		params.Set("after", after)
	}

	return fmt.Sprintf("%s/%s/%s/insights?%s",
		c.cfg.BaseURL, c.cfg.APIVersion, accountPath(c.cfg.AdAccountID), params.Encode())
}

// accountPath adds the act_ prefix the Graph API expects on ad account ids.
func accountPath(id string) string {
	if strings.HasPrefix(id, "act_") {
		return id
	}
	return "act_" + id
}

func (e *graphError) String() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s, code %d)", e.Message, e.Type, e.Code)
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error *graphError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.String()
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return msg
}
