package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"checklistapp/internal/handler"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ConnectionChecker interface {
	IsConnected() bool
}

type RouterConfig struct {
	JWTSecret string

	Auth      *handler.AuthHandler
	Projects  *handler.ProjectHandler
	Tasks     *handler.TaskHandler
	Checklist *handler.ChecklistHandler

	DB        Pinger
	Publisher ConnectionChecker

	Logger *zap.Logger
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := cfg.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		if cfg.Publisher != nil && !cfg.Publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "message broker unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", cfg.Auth.Register)
	r.POST("/login", cfg.Auth.Login)

	// Independent notification side channel; deliberately outside auth so
	// automation without an account can ping the channel.
	r.POST("/smart-checklist/slack-notify", cfg.Checklist.SlackNotify)

	authed := r.Group("/")
	authed.Use(AuthMiddleware(cfg.JWTSecret))
	{
		authed.POST("/smart-checklist", cfg.Checklist.SmartChecklist)

		authed.GET("/projects", cfg.Projects.List)
		authed.POST("/projects", cfg.Projects.Create)
		authed.GET("/projects/:id", cfg.Projects.Get)
		authed.DELETE("/projects/:id", cfg.Projects.Delete)

		authed.GET("/projects/:id/tasks", cfg.Tasks.List)
		authed.POST("/projects/:id/tasks", cfg.Tasks.Create)
		authed.PUT("/tasks/:id", cfg.Tasks.Update)
		authed.POST("/tasks/:id/toggle", cfg.Tasks.Toggle)
	}

	return r
}
