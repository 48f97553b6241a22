// Package main runs the background email worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vidya-vichar/backend/config"
	"github.com/vidya-vichar/backend/internal/emaillogs"
	"github.com/vidya-vichar/backend/internal/worker"
	"github.com/vidya-vichar/backend/pkg/database"
	"github.com/vidya-vichar/backend/pkg/mailer"
	"github.com/vidya-vichar/backend/pkg/queue"
	"github.com/vidya-vichar/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	logRepo := emaillogs.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	m := mailer.New(cfg.Email.APIKey, cfg.Email.FromName, cfg.Email.FromAddress, logger)
	processor := worker.NewEmailProcessor(logRepo, m, jobQueue, logger)

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	logger.Info("email worker started")
	processor.Run(runCtx)
	logger.Info("email worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
