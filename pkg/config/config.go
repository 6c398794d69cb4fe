package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Application settings
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Meta      MetaConfig
	Dashboard DashboardConfig
}

// Server settings
type ServerConfig struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	FrontendOrigins []string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

// MetaConfig points at the Graph API insights endpoint of one ad account.
type MetaConfig struct {
	AccessToken        string
	AdAccountID        string
	APIVersion         string
	BaseURL            string
	Timeout            time.Duration
	PageSize           int
	MaxRecords         int
	RateLimitPerSecond int
	CacheTTL           time.Duration
}

// Configured reports whether both credentials needed for a live fetch are set.
func (m MetaConfig) Configured() bool {
	return m.AccessToken != "" && m.AdAccountID != ""
}

type DashboardConfig struct {
	ConversionActions []string
	Currency          string
	CPCThreshold      float64
	CPMThreshold      float64
	// FallbackFile replaces the embedded sample payload when set.
	FallbackFile string
}

var defaultFrontendOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:4173",
	"http://127.0.0.1:4173",
	"https://bolt.new",
}

// Load reads the environment, after applying envFiles on top of it. Without
// arguments a ".env" in the working directory is used if present. Variables
// already set in the process environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", "30s"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", "10s"),
			FrontendOrigins: getSliceEnv("FRONTEND_ORIGINS", defaultFrontendOrigins),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Meta: MetaConfig{
			AccessToken:        getEnv("META_ACCESS_TOKEN", ""),
			AdAccountID:        getEnv("META_AD_ACCOUNT_ID", ""),
			APIVersion:         getEnv("META_API_VERSION", "v19.0"),
			BaseURL:            strings.TrimRight(getEnv("META_BASE_URL", "https://graph.facebook.com"), "/"),
			Timeout:            getDurationEnv("META_TIMEOUT", "30s"),
			PageSize:           getIntEnv("META_PAGE_SIZE", 100),
			MaxRecords:         getIntEnv("META_MAX_RECORDS", 5000),
			RateLimitPerSecond: getIntEnv("META_RATE_LIMIT_PER_SECOND", 10),
			CacheTTL:           getDurationEnv("META_CACHE_TTL", "5m"),
		},
		Dashboard: DashboardConfig{
			ConversionActions: getSliceEnv("DASHBOARD_CONVERSION_ACTIONS", nil),
			Currency:          getEnv("DASHBOARD_CURRENCY", "R$"),
			CPCThreshold:      getFloatEnv("DASHBOARD_CPC_THRESHOLD", 1.3),
			CPMThreshold:      getFloatEnv("DASHBOARD_CPM_THRESHOLD", 1.2),
			FallbackFile:      getEnv("DASHBOARD_FALLBACK_FILE", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files %v: %w", files, err)
	}
	return nil
}

// Validate rejects settings that would make the server misbehave at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.Meta.PageSize <= 0 {
		errs = append(errs, errors.New("META_PAGE_SIZE must be positive"))
	}
	if c.Meta.MaxRecords <= 0 {
		errs = append(errs, errors.New("META_MAX_RECORDS must be positive"))
	}
	if c.Meta.RateLimitPerSecond <= 0 {
		errs = append(errs, errors.New("META_RATE_LIMIT_PER_SECOND must be positive"))
	}
	if c.Meta.Timeout <= 0 {
		errs = append(errs, errors.New("META_TIMEOUT must be positive"))
	}
	if c.Meta.CacheTTL < 0 {
		errs = append(errs, errors.New("META_CACHE_TTL must not be negative"))
	}
	if c.Dashboard.CPCThreshold <= 1 {
		errs = append(errs, errors.New("DASHBOARD_CPC_THRESHOLD must be greater than 1"))
	}
	if c.Dashboard.CPMThreshold <= 1 {
		errs = append(errs, errors.New("DASHBOARD_CPM_THRESHOLD must be greater than 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getSliceEnv splits a comma separated value, dropping blank entries.
func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
