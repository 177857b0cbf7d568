// Package progress keeps a project's cached completion percentage in sync
// with its task set. Progress is derived state: it is recomputed after every
// completion toggle and written back with last-writer-wins semantics. A
// failed reconcile leaves the toggle in place; the caller surfaces a warning
// and the value catches up on the next toggle.
package progress

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"checklistapp/internal/eventbus"
	"checklistapp/internal/model"
)

type TaskLister interface {
	ListByProject(ctx context.Context, projectID string, ownerID int) ([]model.Task, error)
}

type ProgressWriter interface {
	UpdateProgress(ctx context.Context, projectID string, progress int) error
}

type Reconciler struct {
	tasks    TaskLister
	projects ProgressWriter
	bus      eventbus.Bus
	logger   *zap.Logger
}

func NewReconciler(tasks TaskLister, projects ProgressWriter, bus eventbus.Bus, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		tasks:    tasks,
		projects: projects,
		bus:      bus,
		logger:   logger,
	}
}

// Reconcile recomputes and persists the project's completion percentage.
// Returns the new percentage.
func (r *Reconciler) Reconcile(ctx context.Context, projectID string, ownerID int) (int, error) {
	tasks, err := r.tasks.ListByProject(ctx, projectID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to read task set: %w", err)
	}

	completed := 0
	for _, t := range tasks {
		if t.IsCompleted {
			completed++
		}
	}

	progress := 0
	if len(tasks) > 0 {
		progress = int(math.Round(float64(completed) / float64(len(tasks)) * 100))
	}

	if err := r.projects.UpdateProgress(ctx, projectID, progress); err != nil {
		return 0, fmt.Errorf("failed to write progress: %w", err)
	}

	if err := r.bus.Signal(ctx, eventbus.ProgressKey(projectID)); err != nil {
		// Best-effort refresh hint; the persisted value is already correct.
		r.logger.Warn("Failed to signal progress update",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}

	r.logger.Info("Project progress reconciled",
		zap.String("project_id", projectID),
		zap.Int("completed", completed),
		zap.Int("total", len(tasks)),
		zap.Int("progress", progress),
	)
	return progress, nil
}
