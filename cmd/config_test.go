package cmd

import (
	"testing"
	"time"

	"orders/internal/core/domain/model/kernel"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "LTS", cfg.OrderNumberPrefix)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, kernel.Currency("USD"), cfg.BaseCurrency)
	assert.Equal(t, 15*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, "0 */15 * * * *", cfg.AnalyticsRefreshSpec)
	assert.Empty(t, cfg.KafkaBrokers())
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=orders sslmode=disable", cfg.DSN())
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(lookupFrom(map[string]string{
		"ORDER_NUMBER_PREFIX": "abc",
		"TAX_RATE":            "0.2",
		"BASE_CURRENCY":       "eur",
		"KAFKA_HOST":          "k1:9092, k2:9092",
		"ANALYTICS_CACHE_TTL": "1h",
		"LOG_LEVEL":           "DEBUG",
	}))
	require.NoError(t, err)

	assert.Equal(t, "ABC", cfg.OrderNumberPrefix)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, kernel.Currency("EUR"), cfg.BaseCurrency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
	assert.Equal(t, time.Hour, cfg.AnalyticsCacheTTL)
	assert.Equal(t, log.DEBUG, EchoLogLevel(cfg.LogLevel))
}

func TestLoadConfig_ReportsEveryProblem(t *testing.T) {
	_, err := LoadConfig(lookupFrom(map[string]string{
		"TAX_RATE":            "1.5",
		"BASE_CURRENCY":       "dollars",
		"ANALYTICS_CACHE_TTL": "soon",
	}))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "TAX_RATE")
	assert.Contains(t, err.Error(), "BASE_CURRENCY")
	assert.Contains(t, err.Error(), "ANALYTICS_CACHE_TTL")
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(Config{LogLevel: "loud"})
	require.Error(t, err)

	logger, err := NewLogger(Config{LogLevel: "warn", AppEnv: "development"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}
