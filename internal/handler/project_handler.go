package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"checklistapp/contracts/mq"
	"checklistapp/internal/checklist"
	"checklistapp/internal/eventbus"
	"checklistapp/internal/generation"
	"checklistapp/internal/model"
	"checklistapp/pkg/logger"
	"checklistapp/pkg/metrics"
	"checklistapp/pkg/trace"
)

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (string, error)
	ListByOwner(ctx context.Context, ownerID int) ([]model.Project, error)
	GetByID(ctx context.Context, id string, ownerID int) (*model.Project, error)
	Delete(ctx context.Context, id string, ownerID int) (int64, error)
}

type ProjectTaskStore interface {
	BulkInsert(ctx context.Context, tasks []model.Task) ([]string, error)
	DeleteByProject(ctx context.Context, projectID string, ownerID int) (int64, error)
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type ProjectHandler struct {
	projects  ProjectStore
	tasks     ProjectTaskStore
	publisher EventPublisher
	bus       eventbus.Bus
	logger    *zap.Logger
}

func NewProjectHandler(
	projects ProjectStore,
	tasks ProjectTaskStore,
	publisher EventPublisher,
	bus eventbus.Bus,
	log *zap.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		tasks:     tasks,
		publisher: publisher,
		bus:       bus,
		logger:    log,
	}
}

type createProjectRequest struct {
	Name         string     `json:"name" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	Technologies []string   `json:"technologies"`
	Period       string     `json:"period"`
	TeamType     string     `json:"team_type"`
	Description  string     `json:"description"`
	Attachments  []string   `json:"attachments"`
	IsTeam       bool       `json:"is_team"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Creator      string     `json:"creator"`
}

// List returns the caller's projects, newest first.
func (h *ProjectHandler) List(c *gin.Context) {
	ownerID := currentUserID(c)

	projects, err := h.projects.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to list projects",
			zap.Int("owner_id", ownerID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// Create persists a project from the creation form. Its starter checklist is
// composed from the selected technology templates and inserted in order.
func (h *ProjectHandler) Create(c *gin.Context) {
	ownerID := currentUserID(c)
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and type are required"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and type are required"})
		return
	}
	if !model.ValidProjectType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project type"})
		return
	}

	project := &model.Project{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(req.Name),
		Type:         req.Type,
		Technologies: req.Technologies,
		Period:       req.Period,
		TeamType:     req.TeamType,
		Description:  req.Description,
		Attachments:  req.Attachments,
		IsTeam:       req.IsTeam,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	projectID, err := h.projects.Insert(c.Request.Context(), project)
	if err != nil {
		log.Error("Failed to insert project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	titles := checklist.Compose(req.Technologies)
	tasks := make([]model.Task, len(titles))
	for i, title := range titles {
		tasks[i] = model.Task{
			ProjectID: projectID,
			OwnerID:   ownerID,
			Title:     title,
		}
	}
	if _, err := h.tasks.BulkInsert(c.Request.Context(), tasks); err != nil {
		// The project row stays; the client can retry tasks or delete it.
		log.Error("Failed to insert starter checklist",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create starter checklist"})
		return
	}
	metrics.IncrementChecklistGeneration("template")

	h.announce(c.Request.Context(), project, req.Creator, len(titles))

	log.Info("Project created",
		zap.String("project_id", projectID),
		zap.Int("task_count", len(titles)),
	)
	c.JSON(http.StatusCreated, gin.H{
		"project":   project,
		"checklist": titles,
	})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	ownerID := currentUserID(c)
	projectID := c.Param("id")

	project, err := h.projects.GetByID(c.Request.Context(), projectID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to load project",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete removes the project and all its tasks. Tasks go first so a failure
// between the two deletes never leaves orphaned tasks behind.
func (h *ProjectHandler) Delete(c *gin.Context) {
	ownerID := currentUserID(c)
	projectID := c.Param("id")
	log := logger.WithTrace(c.Request.Context(), h.logger)

	if _, err := h.tasks.DeleteByProject(c.Request.Context(), projectID, ownerID); err != nil {
		log.Error("Failed to delete project tasks",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	rows, err := h.projects.Delete(c.Request.Context(), projectID, ownerID)
	if err != nil {
		log.Error("Failed to delete project",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) announce(ctx context.Context, project *model.Project, creator string, taskCount int) {
	log := logger.WithTrace(ctx, h.logger)

	if creator == "" {
		creator = "unknown"
	}
	payload := mq.ProjectCreatedPayload{
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
		Name:      project.Name,
		Creator:   creator,
		TaskCount: taskCount,
		TraceID:   trace.FromContext(ctx),
	}
	if err := h.publisher.Publish(generation.RoutingKeyProjectCreated, payload); err != nil {
		log.Warn("Failed to publish project created event",
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
	}

	if err := h.bus.Signal(ctx, eventbus.KeyProjectCreated); err != nil {
		log.Warn("Failed to signal project created",
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
	}
}
