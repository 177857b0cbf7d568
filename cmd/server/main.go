package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"checklistapp/internal/auth"
	"checklistapp/internal/config"
	"checklistapp/internal/eventbus"
	"checklistapp/internal/generation"
	"checklistapp/internal/handler"
	"checklistapp/internal/httpserver"
	"checklistapp/internal/inference"
	"checklistapp/internal/progress"
	"checklistapp/internal/repository"
	"checklistapp/internal/slack"
	"checklistapp/pkg/db"
	"checklistapp/pkg/logger"
	"checklistapp/pkg/mq"
	"checklistapp/pkg/redis"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()

	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	bus := eventbus.NewRedisBus(rdb, log)

	users := repository.NewUserRepository(pool, log)
	projects := repository.NewProjectRepository(pool, log)
	tasks := repository.NewTaskRepository(pool, log)

	authSvc := auth.NewService(users, cfg.JWT.Secret, log)
	inferenceClient := inference.NewClient(cfg.Inference, log)
	generationSvc := generation.NewService(inferenceClient, inferenceClient, projects, tasks, publisher, bus, log)
	reconciler := progress.NewReconciler(tasks, projects, bus, log)
	notifier := slack.NewNotifier(cfg.Slack.WebhookURL, log)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		JWTSecret: cfg.JWT.Secret,
		Auth:      handler.NewAuthHandler(authSvc, log),
		Projects:  handler.NewProjectHandler(projects, tasks, publisher, bus, log),
		Tasks:     handler.NewTaskHandler(tasks, projects, reconciler, log),
		Checklist: handler.NewChecklistHandler(generationSvc, notifier, log),
		DB:        pool,
		Publisher: publisher,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("API server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("API server stopped")
}
