package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orders/cmd"
	httpin "orders/internal/adapters/in/http"
	"orders/internal/adapters/out/kafka"
	"orders/internal/adapters/out/postgres"
	redisadapter "orders/internal/adapters/out/redis"
	"orders/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	loadDotEnv()

	configs, err := cmd.LoadConfig(os.LookupEnv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := cmd.NewLogger(configs)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB := mustOpenDB(configs, logger)

	publisher, closePublisher := newPublisher(configs, logger)
	defer closePublisher()

	cache, closeCache := newReportCache(configs, logger)
	defer closeCache()

	app := cmd.NewCompositionRoot(configs, gormDB, publisher, cache, logger)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		logger.Fatal("failed to start jobs", zap.Error(err))
	}
	defer jobManager.StopAll()

	startWebServer(app, configs, logger)
}

// loadDotEnv reads .env when present. Variables already set win.
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
}

func mustOpenDB(configs cmd.Config, logger *zap.Logger) *gorm.DB {
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err = postgres.Migrate(gormDB); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	return gormDB
}

func newPublisher(configs cmd.Config, logger *zap.Logger) (ports.OrderEventPublisher, func()) {
	brokers := configs.KafkaBrokers()
	if len(brokers) == 0 {
		logger.Warn("KAFKA_HOST is not set, order events are dropped")
		return kafka.NoopPublisher{}, func() {}
	}

	publisher := kafka.NewOrderEventPublisher(brokers, configs.KafkaOrderChangedTopic, logger)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
}

func newReportCache(configs cmd.Config, logger *zap.Logger) (ports.ReportCache, func()) {
	if configs.RedisAddr == "" {
		logger.Info("REDIS_ADDR is not set, analytics are not cached")
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
		DB:       configs.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis is unreachable, cache reads will miss", zap.Error(err))
	}

	return redisadapter.NewReportCache(client, configs.AnalyticsCacheTTL), func() {
		_ = client.Close()
	}
}

func startWebServer(app cmd.CompositionRoot, configs cmd.Config, logger *zap.Logger) {
	e := httpin.NewEcho(logger)
	e.Logger.SetLevel(cmd.EchoLogLevel(configs.LogLevel))
	app.CreateHTTPServer().Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
		logger.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
