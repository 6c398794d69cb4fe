package delivery

import (
	"net/http"
	"slices"

	"adsdash/internal/delivery/middleware"
	"adsdash/pkg/config"
	"adsdash/pkg/logger"
	"adsdash/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
	server   config.ServerConfig
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics, server config.ServerConfig) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
		server:   server,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(r.server.RequestTimeout))
	router.Use(cors.New(r.corsConfig()))

	router.GET("/health", r.handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("", r.handlers.GetAPIInfo)
		api.GET("/", r.handlers.GetAPIInfo)

		api.GET("/meta/insights", r.handlers.GetMetaInsights)

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("/summary", r.handlers.GetDashboardSummary)
			dashboard.POST("/summary", r.handlers.PostDashboardSummary)
		}
	}

	router.GET("/metrics", middleware.PrometheusHandler(r.metrics.Registry))

	return router
}

// corsConfig allows the configured frontend origins. A "*" entry, or no
// origins at all, opens the API to every origin without credentials.
func (r *HTTPRouter) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader, DataSourceHeader}

	origins := r.server.FrontendOrigins
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
		return config
	}

	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}
