package delivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"adsdash/internal/domain"
	"adsdash/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DataSourceHeader tells the caller whether the summary came from live data.
const DataSourceHeader = "X-Data-Source"

const maxPayloadBytes = 10 << 20

// DashboardService is what the handlers need from the use case layer.
type DashboardService interface {
	Summary(ctx context.Context, period domain.DateRange) (*domain.SummaryResult, error)
	RawInsights(ctx context.Context, period domain.DateRange) (*domain.InsightsResult, error)
	SummarizeRecords(ctx context.Context, records []domain.RawInsight) domain.DashboardSummary
}

// handles HTTP requests
type HTTPHandlers struct {
	dashboard DashboardService
	logger    *logger.Logger
	version   string
}

func NewHTTPHandlers(dashboard DashboardService, logger *logger.Logger, version string) *HTTPHandlers {
	return &HTTPHandlers{
		dashboard: dashboard,
		logger:    logger,
		version:   version,
	}
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "adsdash",
		"version":    h.version,
		"request_id": c.GetString("request_id"),
	})
}

// GetAPIInfo lists the available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	dateParams := gin.H{
		"date_start": "Required: first day of the period (YYYY-MM-DD)",
		"date_end":   "Required: last day of the period (YYYY-MM-DD)",
	}

	c.JSON(http.StatusOK, gin.H{
		"service":     "adsdash",
		"version":     h.version,
		"description": "Paid-ads dashboard: KPIs, daily series, campaign ranking and insights from Meta Ads data",
		"endpoints": gin.H{
			"insights": gin.H{
				"path":        "/api/meta/insights",
				"method":      http.MethodGet,
				"description": "Raw campaign/day insight records, with the sample payload substituted when Meta is unavailable",
				"parameters":  dateParams,
				"example":     "/api/meta/insights?date_start=2024-05-01&date_end=2024-05-31",
			},
			"summary": gin.H{
				"path":        "/api/dashboard/summary",
				"method":      http.MethodGet,
				"description": "Aggregated dashboard for the period",
				"parameters":  dateParams,
				"example":     "/api/dashboard/summary?date_start=2024-05-01&date_end=2024-05-31",
			},
			"summarize": gin.H{
				"path":        "/api/dashboard/summary",
				"method":      http.MethodPost,
				"description": `Aggregate posted records, either {"data": [...]} or a bare array`,
			},
			"metrics": gin.H{
				"path":   "/metrics",
				"method": http.MethodGet,
			},
		},
		"kpis": gin.H{
			"ctr":  "Click-through rate in percent (clicks / impressions * 100)",
			"cpc":  "Cost per click (spend / clicks)",
			"cpm":  "Cost per thousand impressions (spend / impressions * 1000)",
			"roas": "Return on ad spend (revenue / spend)",
		},
		"request_id": c.GetString("request_id"),
	})
}

// GetMetaInsights returns the raw records for the requested period
func (h *HTTPHandlers) GetMetaInsights(c *gin.Context) {
	period, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	result, err := h.dashboard.RawInsights(c.Request.Context(), period)
	if err != nil {
		h.fetchFailed(c, err)
		return
	}

	c.Header(DataSourceHeader, string(result.Source))
	c.JSON(http.StatusOK, result)
}

// GetDashboardSummary aggregates the requested period
func (h *HTTPHandlers) GetDashboardSummary(c *gin.Context) {
	period, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	result, err := h.dashboard.Summary(c.Request.Context(), period)
	if err != nil {
		h.fetchFailed(c, err)
		return
	}

	c.Header(DataSourceHeader, string(result.Source))
	c.JSON(http.StatusOK, result.Summary)
}

// PostDashboardSummary aggregates records supplied in the request body
func (h *HTTPHandlers) PostDashboardSummary(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes)

	body, err := c.GetRawData()
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.errorResponse(c, status, "Invalid request body", err.Error())
		return
	}

	records, err := domain.ParseInsightsPayload(body)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Invalid insights payload", err.Error())
		return
	}

	summary := h.dashboard.SummarizeRecords(c.Request.Context(), records)

	c.Header(DataSourceHeader, string(domain.SourceRequest))
	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandlers) parsePeriod(c *gin.Context) (domain.DateRange, bool) {
	period, err := domain.ParseDateRange(c.Query("date_start"), c.Query("date_end"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Invalid date range", err.Error())
		return domain.DateRange{}, false
	}
	return period, true
}

func (h *HTTPHandlers) fetchFailed(c *gin.Context, err error) {
	h.logger.WithContext(c.Request.Context()).WithError(err).Error("Failed to load insights")

	if errors.Is(err, domain.ErrNoInsights) {
		h.errorResponse(c, http.StatusBadGateway, "No insights data available", "could not obtain insights for the requested period")
		return
	}
	h.errorResponse(c, http.StatusBadGateway, "Failed to fetch insights", err.Error())
}

func (h *HTTPHandlers) errorResponse(c *gin.Context, status int, title, message string) {
	c.JSON(status, gin.H{
		"error":      title,
		"message":    message,
		"request_id": c.GetString("request_id"),
	})
}
