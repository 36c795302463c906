package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/meditrack/ward-api/internal/config"
	"github.com/meditrack/ward-api/internal/repository/postgres"
	"github.com/meditrack/ward-api/pkg/logger"
	redisbroker "github.com/meditrack/ward-api/pkg/messaging/redis"
	"github.com/meditrack/ward-api/pkg/metrics"
	"github.com/meditrack/ward-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("ward_worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	bedRepo := postgres.NewBedRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Worker.OutboxBatchSize,
		PollInterval:  cfg.Worker.OutboxPollInterval,
		RetryAttempts: cfg.Worker.OutboxRetryAttempts,
		RetryDelay:    cfg.Worker.OutboxRetryDelay,
		MaxRetries:    cfg.Worker.OutboxMaxRetries,
	}, appLogger, m)

	reconciler := worker.NewReconciler(bedRepo, patientRepo, worker.ReconcilerConfig{
		Interval: cfg.Worker.ReconcileInterval,
		Repair:   cfg.Worker.ReconcileRepairs,
	}, appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go reconciler.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down workers")
	cancel()
}
