package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/coursedesk/coursedesk/internal/app"
	"github.com/coursedesk/coursedesk/internal/backbone"
	"github.com/coursedesk/coursedesk/internal/sweep"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	loc, err := time.LoadLocation(cfg.EvalTimeZone)
	if err != nil {
		logger.Error("load evaluation time zone", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	client := backbone.NewClient(cfg.BackboneBaseURL, cfg.BackboneTimeout)
	store := sweep.NewStore(redisClient, cfg.SweepTTL)
	job := sweep.NewJob(client, store, logger, loc)

	worker, err := sweep.NewWorker(sweep.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Job:       job,
		CronSpec:  cfg.SweepCron,
		PageSize:  cfg.SweepPageSize,
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting sweep worker", slog.String("cron", cfg.SweepCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
