package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/config"
	"github.com/42-Course/matcha/internal/logger"
	"github.com/42-Course/matcha/internal/storage/postgres"
	"github.com/42-Course/matcha/internal/worker"
	"github.com/42-Course/matcha/internal/worker/jobs"
)

func main() {
	once := flag.Bool("once", false, "run every job once and exit")
	flag.Parse()

	// Load the dotenv if exists
	_ = godotenv.Load()

	var env config.Worker
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal("Cannot load env:", err)
	}

	zl, err := logger.New(env.Log)
	if err != nil {
		log.Fatal("Cannot create logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("Starting matcha maintenance worker")

	dbPool, err := pgxpool.New(context.Background(), env.Database.ToDbConnectionUri())
	if err != nil {
		zl.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		zl.Fatal("Failed to ping database", zap.Error(err))
	}
	zl.Info("Database connection established")

	store := postgres.NewStore(dbPool)

	registry := worker.NewRegistry()
	jobs.Register(registry, store, jobs.Options{
		SessionIdle:    time.Duration(env.SessionIdleMinutes) * time.Minute,
		VisitRetention: time.Duration(env.VisitRetentionDays) * 24 * time.Hour,
	})
	zl.Info("Registered maintenance jobs", zap.Strings("jobs", registry.List()))

	runner := worker.NewRunner(registry, zl, worker.Config{
		TickInterval:   time.Duration(env.TickInterval) * time.Second,
		JobTimeout:     time.Duration(env.JobTimeout) * time.Second,
		MaxConcurrency: env.Concurrency,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runner.RunOnce(ctx); err != nil {
			zl.Error("Maintenance run failed", zap.Error(err))
		}
		return
	}

	_ = runner.Start(ctx)
	zl.Info("Worker stopped gracefully")
}
