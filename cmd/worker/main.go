// Package main runs the background maintenance worker (expired API
// token sweeps).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/office-lunch/backend/config"
	"github.com/office-lunch/backend/internal/tokens"
	"github.com/office-lunch/backend/internal/worker"
	"github.com/office-lunch/backend/pkg/crypto"
	"github.com/office-lunch/backend/pkg/database"
	"github.com/office-lunch/backend/pkg/queue"
	"github.com/office-lunch/backend/pkg/redis"
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

	enc, err := crypto.NewEncryptor(cfg.Token.EncryptionKey)
	if err != nil {
		logger.Fatal("encryptor", zap.Error(err))
	}

	tokenRepo := tokens.NewRepository(pool)
	tokenSvc := tokens.NewService(tokenRepo, enc, cfg.Token.Prefix)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	sweeper := worker.NewTokenSweeper(tokenSvc, jobQueue,
		time.Duration(cfg.Token.SweepIntervalMinutes)*time.Minute, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweeper.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
