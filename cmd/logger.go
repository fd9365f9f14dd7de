package cmd

import (
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// NewLogger builds a development logger when APP_ENV is development and a
// JSON production logger otherwise, both at LOG_LEVEL.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.AppEnv == "development" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build(zap.Fields(zap.String("service", "orders")))
}

// EchoLogLevel maps LOG_LEVEL onto echo's gommon logger.
func EchoLogLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error", "dpanic", "panic", "fatal":
		return log.ERROR
	default:
		return log.INFO
	}
}
