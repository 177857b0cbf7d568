// Package slack delivers the best-effort project-creation message to a Slack
// incoming webhook. Failures here must never reach the checklist pipeline.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewNotifier(webhookURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NotifyProjectCreated posts the creation message. A missing webhook URL is
// a silent no-op, matching an unconfigured integration.
func (n *Notifier) NotifyProjectCreated(ctx context.Context, projectName, creator string) error {
	if n.webhookURL == "" {
		n.logger.Debug("Slack webhook not configured, skipping notification")
		return nil
	}

	payload := map[string]string{
		"text": fmt.Sprintf("New project created: *%s* by %s", projectName, creator),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("Slack webhook unreachable", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Error("Slack webhook rejected notification",
			zap.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	n.logger.Info("Slack notification delivered",
		zap.String("project_name", projectName),
		zap.String("creator", creator),
	)
	return nil
}
