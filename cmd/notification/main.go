package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"socialhub/config"
	"socialhub/internal/notification"
	"socialhub/pkg/logger"
	"socialhub/pkg/mq"
	"socialhub/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting notification-service...",
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("pending_store", cfg.Notification.PendingStore),
	)

	var pending notification.PendingStore
	switch cfg.Notification.PendingStore {
	case "redis":
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		defer client.Close()
		pending = notification.NewRedisPending(client)
	default:
		pending = notification.NewMemoryPending()
	}

	publisher := mq.NewPublisher(cfg.MQ.URL, log)
	defer publisher.Close()

	registry := notification.NewRegistry()
	router := notification.NewRouter(registry, pending, log)
	wsHandler := notification.NewWSHandler(router, cfg.JWT.Secret, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := mq.NewConsumer(cfg.MQ.URL, notification.NewConsumer(router, log).Subscription(), log)
	if cfg.MQ.DeadLetter {
		consumer.WithDeadLetter(publisher)
	}
	go consumer.Run(ctx)

	engine := gin.New()
	engine.Use(gin.Recovery())
	wsHandler.RegisterRoutes(engine)
	engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/readyz", func(c *gin.Context) {
		if !publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mq not ready"})
			return
		}
		c.Status(http.StatusOK)
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("notification-service is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notification-service gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("notification-service shutdown complete")
}
