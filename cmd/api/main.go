package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			appLog.Fatal("Failed to migrate database", "error", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg, appLog)
		if err != nil {
			// Continue without caching and rate limiting if Redis is not available
			appLog.Warn("Failed to connect to Redis", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	srv, err := server.New(ctx, cfg, db, redisClient, appLog)
	if err != nil {
		appLog.Fatal("Failed to build server", "error", err)
	}
	if err := srv.Run(ctx); err != nil {
		appLog.Fatal("Server error", "error", err)
	}
	appLog.Info("Server stopped")
}
