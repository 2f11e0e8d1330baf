package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/signupform/internal/config"
	"anoa.com/signupform/internal/server"
	"anoa.com/signupform/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.Init(cfg.AppEnv)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg.RedisURL, lg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, redisClient, lg)
	if err != nil {
		lg.Fatal("failed to build server", zap.Error(err))
	}
	srv.StartSessionSweeper(ctx)

	lg.Info("signup form server listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := srv.Run(":" + cfg.Port); err != nil {
		lg.Fatal("server exited with error", zap.Error(err))
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; live
// notifications are then disabled but the form keeps working.
func connectRedis(ctx context.Context, url string, lg *zap.Logger) *redis.Client {
	if url == "" {
		lg.Info("REDIS_URL not set, live notifications disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		lg.Warn("invalid REDIS_URL, live notifications disabled", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lg.Warn("redis unreachable, live notifications disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}
