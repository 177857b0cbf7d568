// Package mqhandler holds the notification worker's message handlers.
package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"checklistapp/contracts/mq"
	"checklistapp/pkg/logger"
	"checklistapp/pkg/trace"
)

const handlerName = "slack_notify"

type SlackNotifier interface {
	NotifyProjectCreated(ctx context.Context, projectName, creator string) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, eventKey string) bool
}

// ProjectCreatedHandler forwards project creation events to Slack. The
// notification is an outward side effect: a failed delivery is logged and the
// message is acked anyway, because redelivering would risk duplicate pings
// without making the project any more created.
type ProjectCreatedHandler struct {
	notifier SlackNotifier
	deduper  Deduper
	logger   *zap.Logger
}

func NewProjectCreatedHandler(notifier SlackNotifier, deduper Deduper, log *zap.Logger) *ProjectCreatedHandler {
	return &ProjectCreatedHandler{
		notifier: notifier,
		deduper:  deduper,
		logger:   log,
	}
}

func (h *ProjectCreatedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mq.ProjectCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		// A malformed payload never becomes parseable; nacking it would loop.
		h.logger.Error("Dropping malformed project created payload",
			zap.Int("message_size", len(data)),
			zap.Error(err),
		)
		return nil
	}
	if payload.ProjectID == "" {
		h.logger.Error("Dropping project created payload without project id")
		return nil
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	if !h.deduper.AcquireOnce(ctx, handlerName, payload.ProjectID) {
		return nil
	}

	if err := h.notifier.NotifyProjectCreated(ctx, payload.Name, payload.Creator); err != nil {
		log.Warn("Slack notification failed",
			zap.String("project_id", payload.ProjectID),
			zap.Error(err),
		)
		return nil
	}

	log.Info("Slack notification sent",
		zap.String("project_id", payload.ProjectID),
		zap.String("project_name", payload.Name),
	)
	return nil
}
