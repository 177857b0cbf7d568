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

	"checklistapp/internal/model"
	"checklistapp/pkg/logger"
	"checklistapp/pkg/metrics"
)

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) (string, error)
	ListByProject(ctx context.Context, projectID string, ownerID int) ([]model.Task, error)
	SetCompleted(ctx context.Context, taskID string, ownerID int, completed bool) (string, error)
	Update(ctx context.Context, t *model.Task) (int64, error)
}

type ProjectGetter interface {
	GetByID(ctx context.Context, id string, ownerID int) (*model.Project, error)
}

type ProgressReconciler interface {
	Reconcile(ctx context.Context, projectID string, ownerID int) (int, error)
}

type TaskHandler struct {
	tasks      TaskStore
	projects   ProjectGetter
	reconciler ProgressReconciler
	logger     *zap.Logger
}

func NewTaskHandler(tasks TaskStore, projects ProjectGetter, reconciler ProgressReconciler, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:      tasks,
		projects:   projects,
		reconciler: reconciler,
		logger:     log,
	}
}

type taskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *TaskHandler) List(c *gin.Context) {
	ownerID := currentUserID(c)
	projectID := c.Param("id")

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID, ownerID)
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to list tasks",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Create adds a manual task to an existing project owned by the caller.
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID := currentUserID(c)
	projectID := c.Param("id")
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if req.Category != "" && !model.ValidTaskCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task category"})
		return
	}

	if _, err := h.projects.GetByID(c.Request.Context(), projectID, ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		log.Error("Failed to check project ownership",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	task := &model.Task{
		ProjectID:   projectID,
		OwnerID:     ownerID,
		Title:       title,
		Description: req.Description,
		Category:    req.Category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if _, err := h.tasks.Insert(c.Request.Context(), task); err != nil {
		log.Error("Failed to insert task",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

type toggleRequest struct {
	IsCompleted *bool `json:"is_completed" binding:"required"`
}

// Toggle flips a task's completion flag and reconciles the parent project's
// progress. The toggle is authoritative; a failed reconcile is reported as a
// warning and the cached percentage catches up on the next toggle.
func (h *TaskHandler) Toggle(c *gin.Context) {
	ownerID := currentUserID(c)
	taskID := c.Param("id")
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_completed is required"})
		return
	}
	completed := *req.IsCompleted

	projectID, err := h.tasks.SetCompleted(c.Request.Context(), taskID, ownerID, completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		log.Error("Failed to toggle task",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle task"})
		return
	}
	metrics.IncrementTaskToggle(completed)

	progress, err := h.reconciler.Reconcile(c.Request.Context(), projectID, ownerID)
	if err != nil {
		log.Warn("Progress reconciliation failed after toggle",
			zap.String("task_id", taskID),
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{
			"task_id":      taskID,
			"is_completed": completed,
			"warning":      "task updated but progress could not be recalculated",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":      taskID,
		"is_completed": completed,
		"progress":     progress,
	})
}

// Update edits a task's authored fields. Completion is excluded here; it is
// only changed through Toggle so reconciliation has a single trigger.
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID := currentUserID(c)
	taskID := c.Param("id")
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	category := req.Category
	if category == "" {
		category = model.DefaultTaskCategory
	}
	if !model.ValidTaskCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task category"})
		return
	}

	task := &model.Task{
		ID:          taskID,
		OwnerID:     ownerID,
		Title:       title,
		Description: req.Description,
		Category:    category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	rows, err := h.tasks.Update(c.Request.Context(), task)
	if err != nil {
		log.Error("Failed to update task",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}
