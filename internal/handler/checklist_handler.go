package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklistapp/internal/generation"
	"checklistapp/pkg/logger"
)

type GenerationService interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

type ProjectNotifier interface {
	NotifyProjectCreated(ctx context.Context, projectName, creator string) error
}

// ChecklistHandler is the HTTP face of the smart checklist pipeline.
type ChecklistHandler struct {
	svc      GenerationService
	notifier ProjectNotifier
	logger   *zap.Logger
}

func NewChecklistHandler(svc GenerationService, notifier ProjectNotifier, log *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{
		svc:      svc,
		notifier: notifier,
		logger:   log,
	}
}

// The gateway keeps the camelCase field names of the browser client it
// replaced, unlike the snake_case CRUD surface.
type smartChecklistRequest struct {
	Name         string   `json:"name"`
	Period       string   `json:"period"`
	TeamType     string   `json:"teamType"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Creator      string   `json:"creator"`
}

// SmartChecklist accepts either a JSON body or a multipart form. The
// multipart form may carry an audio brief under the "audio" field; its
// "technologies" field is a JSON-encoded array of strings.
func (h *ChecklistHandler) SmartChecklist(c *gin.Context) {
	ownerID := currentUserID(c)
	log := logger.WithTrace(c.Request.Context(), h.logger)

	req, audioFile, err := h.parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	if audioFile != nil {
		defer audioFile.Close()
	}

	genReq := generation.Request{
		OwnerID:      ownerID,
		Creator:      req.Creator,
		Name:         req.Name,
		Period:       req.Period,
		TeamType:     req.TeamType,
		Description:  req.Description,
		Technologies: req.Technologies,
	}
	if audioFile != nil {
		genReq.Audio = audioFile.file
		genReq.AudioFilename = audioFile.filename
	}

	result, err := h.svc.Generate(c.Request.Context(), genReq)
	if err != nil {
		log.Error("Smart checklist generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	failed := result.Failed
	if failed == nil {
		failed = []generation.FailedTask{}
	}
	c.JSON(http.StatusOK, gin.H{
		"projectId":   result.ProjectID,
		"checklist":   result.Checklist,
		"description": result.Description,
		"failedTasks": failed,
	})
}

type audioUpload struct {
	file     multipart.File
	filename string
}

func (a *audioUpload) Close() {
	_ = a.file.Close()
}

func (h *ChecklistHandler) parseRequest(c *gin.Context) (*smartChecklistRequest, *audioUpload, error) {
	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req smartChecklistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	req := &smartChecklistRequest{
		Name:        formValue(form, "name"),
		Period:      formValue(form, "period"),
		TeamType:    formValue(form, "teamType"),
		Description: formValue(form, "description"),
		Creator:     formValue(form, "creator"),
	}
	if raw := formValue(form, "technologies"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Technologies); err != nil {
			return nil, nil, err
		}
	}

	files := form.File["audio"]
	if len(files) == 0 {
		return req, nil, nil
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, nil, err
	}
	return req, &audioUpload{file: f, filename: files[0].Filename}, nil
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

type slackNotifyRequest struct {
	ProjectName string `json:"projectName" binding:"required"`
	Creator     string `json:"creator"`
}

// SlackNotify is an independent side channel: callers can trigger the
// creation message without going through generation.
func (h *ChecklistHandler) SlackNotify(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req slackNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectName is required"})
		return
	}
	creator := req.Creator
	if creator == "" {
		creator = "unknown"
	}

	if err := h.notifier.NotifyProjectCreated(c.Request.Context(), req.ProjectName, creator); err != nil {
		log.Error("Slack notification failed",
			zap.String("project_name", req.ProjectName),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deliver notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
