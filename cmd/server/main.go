package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/db"
	"github.com/42-Course/matcha/internal/api"
	"github.com/42-Course/matcha/internal/auth"
	"github.com/42-Course/matcha/internal/cache"
	"github.com/42-Course/matcha/internal/config"
	"github.com/42-Course/matcha/internal/logger"
	"github.com/42-Course/matcha/internal/push"
	"github.com/42-Course/matcha/internal/storage/postgres"

	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
)

func main() {
	// Load the dotenv if exists
	_ = godotenv.Load()

	var env config.Server
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal("Cannot load env:", err)
	}
	if err := env.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	zl, err := logger.New(env.Log)
	if err != nil {
		log.Fatal("Cannot create logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("Starting matcha admin API server")

	if env.MigrateOnStart {
		if err := runMigrations(env.Database); err != nil {
			zl.Fatal("Failed to run migrations", zap.Error(err))
		}
		zl.Info("Migrations ran successfully")
	}

	// Initialize database connection pool
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

	var statsCache cache.Cache = cache.Noop{}
	if env.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     env.Redis.Addr,
			Password: env.Redis.Password,
			DB:       env.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zl.Warn("Redis unreachable, statistics are served uncached until it recovers", zap.Error(err))
		}
		cancel()
		statsCache = cache.NewRedis(rdb, env.StatsCacheDuration(), zl.Named("cache"))
		zl.Info("Statistics cache enabled", zap.String("addr", env.Redis.Addr))
	}

	var publisher push.Publisher = push.NewLogPublisher(zl.Named("push"))
	var broker api.BrokerStatus
	if env.Push.AMQPURL != "" {
		amqpPublisher, err := push.NewAMQPPublisher(env.Push.AMQPURL, env.Push.Exchange)
		if err != nil {
			zl.Fatal("Failed to connect to broker", zap.Error(err))
		}
		publisher = amqpPublisher
		broker = amqpPublisher
		zl.Info("Notification push enabled", zap.String("exchange", env.Push.Exchange))
	}
	defer func() { _ = publisher.Close() }()

	dispatcher := push.NewDispatcher(publisher, zl.Named("push"), push.Config{
		Workers: env.Push.Workers,
		Buffer:  env.Push.Buffer,
	})
	dispatcher.Start()

	gin.SetMode(gin.ReleaseMode)
	apiHandler := api.NewHandler(api.Deps{
		Store:              store,
		Tokens:             auth.NewTokenManager(env.SessionSecret),
		Cache:              statsCache,
		Notifier:           dispatcher,
		Broker:             broker,
		Logger:             zl.Named("http"),
		AdminUsername:      env.AdminUsername,
		AllowedOrigins:     env.AllowedOrigins,
		RateLimitPerMinute: env.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + env.ServerPort,
		Handler:           apiHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start HTTP server in goroutine
	go func() {
		zl.Info("HTTP server listening", zap.String("port", env.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	// Requests are finished, flush queued notifications
	dispatcher.Stop()

	zl.Info("API server exited gracefully")
}

func runMigrations(database config.Database) error {
	d, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, database.ToMigrationUri())
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
