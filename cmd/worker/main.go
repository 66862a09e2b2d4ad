package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mnaeem99/econceptions-assignment/internal/config"
	"github.com/mnaeem99/econceptions-assignment/internal/workers"
	"github.com/mnaeem99/econceptions-assignment/pkg/cache"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/mnaeem99/econceptions-assignment/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting activity worker...")

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents, "activity-worker-group")
	defer consumer.Close()

	worker := workers.NewActivityWorker(consumer, redisClient, logger)

	go func() {
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Activity worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	worker.Stop()
	logger.Info("Worker exited")
}
