package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"checklistapp/internal/config"
	"checklistapp/internal/mqhandler"
	"checklistapp/internal/slack"
	"checklistapp/pkg/logger"
	"checklistapp/pkg/mq"
	"checklistapp/pkg/redis"
	"checklistapp/pkg/util"
)

const (
	queueName  = "project.created.notify.q"
	routingKey = "project.created"
	dedupTTL   = 24 * time.Hour
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduperWithLogger(rdb, dedupTTL, log)
	notifier := slack.NewNotifier(cfg.Slack.WebhookURL, log)
	projectCreated := mqhandler.NewProjectCreatedHandler(notifier, deduper, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, queueName, routingKey, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	consumer.SetHandler(projectCreated.Handle)

	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Consumer failed", zap.Error(err))
		}
	}()

	// Small HTTP surface for liveness and metrics scraping.
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		if !consumer.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "consumer disconnected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Info("Worker listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Worker HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down worker")

	consumer.Stop()
	_ = srv.Close()
	log.Info("Worker stopped")
}
