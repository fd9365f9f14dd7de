package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHost              string
	KafkaOrderChangedTopic string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OrderNumberPrefix string
	TaxRate           decimal.Decimal
	BaseCurrency      kernel.Currency
	BcryptCost        int

	AnalyticsCacheTTL    time.Duration
	AnalyticsRefreshSpec string

	LogLevel string
	AppEnv   string
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadConfig reads the environment through lookup and applies defaults.
// Every malformed value is reported at once.
func LoadConfig(lookup LookupFunc) (Config, error) {
	env := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		HTTPPort:               env("HTTP_PORT", "8080"),
		DBHost:                 env("DB_HOST", "localhost"),
		DBPort:                 env("DB_PORT", "5432"),
		DBUser:                 env("DB_USER", "postgres"),
		DBPassword:             env("DB_PASSWORD", ""),
		DBName:                 env("DB_NAME", "orders"),
		DBSslMode:              env("DB_SSLMODE", "disable"),
		KafkaHost:              env("KAFKA_HOST", ""),
		KafkaOrderChangedTopic: env("KAFKA_ORDER_CHANGED_TOPIC", "orders.changed"),
		RedisAddr:              env("REDIS_ADDR", ""),
		RedisPassword:          env("REDIS_PASSWORD", ""),
		OrderNumberPrefix:      strings.ToUpper(env("ORDER_NUMBER_PREFIX", "LTS")),
		AnalyticsRefreshSpec:   env("ANALYTICS_REFRESH_SPEC", "0 */15 * * * *"),
		LogLevel:               strings.ToLower(env("LOG_LEVEL", "info")),
		AppEnv:                 strings.ToLower(env("APP_ENV", "production")),
	}

	var problems []error
	var err error

	if cfg.TaxRate, err = decimal.NewFromString(env("TAX_RATE", "0.1")); err != nil {
		problems = append(problems, fmt.Errorf("TAX_RATE: %w", err))
	} else if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		problems = append(problems, fmt.Errorf("TAX_RATE: %s is outside [0, 1]", cfg.TaxRate))
	}
	if cfg.BaseCurrency, err = kernel.ParseCurrency(env("BASE_CURRENCY", "USD")); err != nil {
		problems = append(problems, fmt.Errorf("BASE_CURRENCY: %w", err))
	}
	if cfg.BcryptCost, err = strconv.Atoi(env("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost))); err != nil {
		problems = append(problems, fmt.Errorf("BCRYPT_COST: %w", err))
	} else if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Errorf("BCRYPT_COST: %d is outside [%d, %d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if cfg.RedisDB, err = strconv.Atoi(env("REDIS_DB", "0")); err != nil {
		problems = append(problems, fmt.Errorf("REDIS_DB: %w", err))
	}
	if cfg.AnalyticsCacheTTL, err = time.ParseDuration(env("ANALYTICS_CACHE_TTL", "15m")); err != nil {
		problems = append(problems, fmt.Errorf("ANALYTICS_CACHE_TTL: %w", err))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(env("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		problems = append(problems, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}

	if err = errors.Join(problems...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN is the libpq style connection string for gorm's postgres driver.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) KafkaBrokers() []string {
	if c.KafkaHost == "" {
		return nil
	}
	brokers := strings.Split(c.KafkaHost, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}
