package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsdash/internal/aggregation"
	"adsdash/internal/domain"
	"adsdash/internal/usecase"
	"adsdash/pkg/config"
	"adsdash/pkg/logger"
	"adsdash/pkg/metrics"
)

type fakeSource struct {
	records []domain.RawInsight
	err     error
}

func (s fakeSource) FetchInsights(_ context.Context, _ domain.DateRange) ([]domain.RawInsight, error) {
	return s.records, s.err
}

const routerRecords = `{"data": [
	{"campaign_id": "1", "campaign_name": "Prospecting", "date_start": "2024-05-01", "spend": "80", "clicks": "40", "impressions": "4000",
	 "actions": [{"action_type": "purchase", "value": "2"}], "action_values": [{"action_type": "purchase", "value": "240"}]},
	{"campaign_id": "2", "campaign_name": "Retargeting", "date_start": "2024-05-02", "spend": "20", "clicks": "10", "impressions": "1000"}
]}`

type testServer struct {
	engine  *gin.Engine
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, primary, fallback domain.InsightsSource) *testServer {
	t.Helper()

	log := logger.NewWithOutput("error", io.Discard)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := usecase.NewDashboardService(primary, fallback, aggregation.NewEngine(aggregation.Config{}), log, m)

	router := NewHTTPRouter(NewHTTPHandlers(svc, log, "test"), log, m, config.ServerConfig{
		RequestTimeout:  5 * time.Second,
		FrontendOrigins: []string{"http://localhost:5173"},
	})

	return &testServer{engine: router.SetupRoutes(), metrics: m}
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func liveRecords(t *testing.T) []domain.RawInsight {
	t.Helper()
	records, err := domain.ParseInsightsPayload([]byte(routerRecords))
	require.NoError(t, err)
	return records
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "abc-123"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "abc-123", body["request_id"])
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDGenerated(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(http.MethodGet, "/api", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), decodeBody(t, rec)["request_id"])
}

func TestGetDashboardSummary_Live(t *testing.T) {
	srv := newTestServer(t, fakeSource{records: liveRecords(t)}, nil)

	rec := srv.do(http.MethodGet, "/api/dashboard/summary?date_start=2024-05-01&date_end=2024-05-02", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "meta", rec.Header().Get(DataSourceHeader))

	var summary domain.DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 100.0, summary.KPIs.Spend)
	assert.Equal(t, int64(2), summary.KPIs.Results)
	require.Len(t, summary.Campaigns, 2)
	assert.Equal(t, "Prospecting", summary.Campaigns[0].CampaignName)
	assert.Len(t, summary.Timeseries, 2)
	assert.NotEmpty(t, summary.Insights)
}

func TestGetDashboardSummary_InvalidDates(t *testing.T) {
	srv := newTestServer(t, fakeSource{records: liveRecords(t)}, nil)

	for _, query := range []string{
		"",
		"?date_start=2024-05-01",
		"?date_start=01-05-2024&date_end=2024-05-02",
		"?date_start=2024-05-03&date_end=2024-05-02",
	} {
		rec := srv.do(http.MethodGet, "/api/dashboard/summary"+query, "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)

		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid date range", body["error"])
		assert.NotEmpty(t, body["message"])
		assert.NotEmpty(t, body["request_id"])
	}
}

func TestGetDashboardSummary_Fallback(t *testing.T) {
	srv := newTestServer(t,
		fakeSource{err: &domain.UpstreamError{StatusCode: 500, Message: "down"}},
		fakeSource{records: liveRecords(t)},
	)

	rec := srv.do(http.MethodGet, "/api/dashboard/summary?date_start=2024-05-01&date_end=2024-05-02", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mock", rec.Header().Get(DataSourceHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.DashboardFallbacks.WithLabelValues("upstream_error")))
}

func TestGetDashboardSummary_NoData(t *testing.T) {
	srv := newTestServer(t, fakeSource{err: domain.ErrSourceNotConfigured}, fakeSource{})

	rec := srv.do(http.MethodGet, "/api/dashboard/summary?date_start=2024-05-01&date_end=2024-05-02", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "No insights data available", decodeBody(t, rec)["error"])
}

func TestGetDashboardSummary_NoFallbackConfigured(t *testing.T) {
	srv := newTestServer(t, fakeSource{err: domain.ErrSourceNotConfigured}, nil)

	rec := srv.do(http.MethodGet, "/api/dashboard/summary?date_start=2024-05-01&date_end=2024-05-02", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to fetch insights", decodeBody(t, rec)["error"])
}

func TestGetMetaInsights(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		srv := newTestServer(t, fakeSource{records: liveRecords(t)}, nil)

		rec := srv.do(http.MethodGet, "/api/meta/insights?date_start=2024-05-01&date_end=2024-05-02", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Len(t, body["data"], 2)
		assert.Equal(t, "meta", body["source"])
		assert.NotContains(t, body, "error")
	})

	t.Run("fallback", func(t *testing.T) {
		srv := newTestServer(t, fakeSource{err: domain.ErrSourceNotConfigured}, fakeSource{records: liveRecords(t)})

		rec := srv.do(http.MethodGet, "/api/meta/insights?date_start=2024-05-01&date_end=2024-05-02", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Len(t, body["data"], 2)
		assert.Equal(t, "mock", body["source"])
		assert.Equal(t, domain.ErrSourceNotConfigured.Error(), body["error"])
	})

	t.Run("empty is not an error", func(t *testing.T) {
		srv := newTestServer(t, fakeSource{records: []domain.RawInsight{}}, nil)

		rec := srv.do(http.MethodGet, "/api/meta/insights?date_start=2024-05-01&date_end=2024-05-02", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data": [], "source": "meta"}`, rec.Body.String())
	})
}

func TestPostDashboardSummary(t *testing.T) {
	srv := newTestServer(t, fakeSource{err: domain.ErrSourceNotConfigured}, nil)

	t.Run("envelope", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/api/dashboard/summary", routerRecords, map[string]string{"Content-Type": "application/json"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "request", rec.Header().Get(DataSourceHeader))

		var summary domain.DashboardSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, 100.0, summary.KPIs.Spend)
	})

	t.Run("empty array", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/api/dashboard/summary", `[]`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, []any{}, body["campaigns"])
		assert.Equal(t, []any{}, body["insights"])
	})

	t.Run("invalid", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/api/dashboard/summary", `{"rows": 1}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid insights payload", decodeBody(t, rec)["error"])
	})
}

func TestRecovery(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)
	srv.engine.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rec := srv.do(http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["request_id"])
}

func TestTimeoutSetsDeadline(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)
	srv.engine.GET("/deadline", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"has_deadline": ok})
	})

	rec := srv.do(http.MethodGet, "/deadline", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["has_deadline"])
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(http.MethodGet, "/health", "", map[string]string{"Origin": "http://localhost:5173"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = srv.do(http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSConfig_Wildcard(t *testing.T) {
	router := NewHTTPRouter(nil, nil, nil, config.ServerConfig{FrontendOrigins: []string{"http://a.example", "*"}})

	cfg := router.corsConfig()
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Empty(t, cfg.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	srv.do(http.MethodGet, "/health", "", nil)
	srv.do(http.MethodGet, "/api/dashboard/summary", "", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/dashboard/summary", "400")))
	assert.Equal(t, 0.0, testutil.ToFloat64(srv.metrics.HTTPRequestsInFlight))

	rec := srv.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
