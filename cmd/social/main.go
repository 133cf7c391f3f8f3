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
	"socialhub/internal/social"
	"socialhub/pkg/db"
	"socialhub/pkg/logger"
	"socialhub/pkg/mq"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting social-service...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("post_service_url", cfg.Peers.PostServiceURL),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	publisher := mq.NewPublisher(cfg.MQ.URL, log)
	defer publisher.Close()

	repo := social.NewRepository(dbConn)
	posts := social.NewPostClient(cfg.Peers.PostServiceURL)
	svc := social.NewService(repo, publisher, posts, log)
	handler := social.NewHandler(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cascades likes, comments and shares away when a post is deleted.
	consumer := mq.NewConsumer(cfg.MQ.URL, social.NewConsumer(repo, log).Subscription(), log)
	if cfg.MQ.DeadLetter {
		consumer.WithDeadLetter(publisher)
	}
	go consumer.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/readyz", func(c *gin.Context) {
		if err := dbConn.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "db not ready"})
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("social-service is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down social-service gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("social-service shutdown complete")
}
