package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/api"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/config"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/cache"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
	})

	deps := api.Deps{
		Log:      appLog,
		CacheTTL: cfg.CacheConfig.TTL,
		Fetch:    cfg.FetchConfig,
	}

	// The report cache is optional: without Redis the service just
	// evaluates every request from scratch.
	if cfg.CacheConfig.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Host + ":" + cfg.RedisConfig.Port,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			appLog.Fatal(err, "Failed to connect to Redis")
		}
		cancel()

		deps.Cache = cache.NewRedisCache(client, "rateplan")
		appLog.Info("report cache enabled", "ttl", cfg.CacheConfig.TTL)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:    cfg.HTTPBindAddr + ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		appLog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(err, "Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.Fatal(err, "Server forced to shutdown")
	}

	appLog.Info("server exited properly")
}
