package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklistapp/internal/eventbus"
	"checklistapp/internal/model"
)

type fakeTaskLister struct {
	tasks []model.Task
	err   error
}

func (f *fakeTaskLister) ListByProject(ctx context.Context, projectID string, ownerID int) ([]model.Task, error) {
	return f.tasks, f.err
}

type fakeProgressWriter struct {
	projectID string
	progress  int
	calls     int
	err       error
}

func (f *fakeProgressWriter) UpdateProgress(ctx context.Context, projectID string, progress int) error {
	f.calls++
	f.projectID = projectID
	f.progress = progress
	return f.err
}

func tasksWith(completed, total int) []model.Task {
	tasks := make([]model.Task, total)
	for i := 0; i < total; i++ {
		tasks[i] = model.Task{ID: "t", IsCompleted: i < completed}
	}
	return tasks
}

func TestReconcileComputesRoundedPercentage(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"no tasks", 0, 0, 0},
		{"none completed", 0, 4, 0},
		{"one of four", 1, 4, 25},
		{"two of three rounds half up", 2, 3, 67},
		{"one of three rounds down", 1, 3, 33},
		{"all completed", 5, 5, 100},
		{"one of eight rounds half up", 1, 8, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeTaskLister{tasks: tasksWith(tt.completed, tt.total)}
			writer := &fakeProgressWriter{}
			r := NewReconciler(lister, writer, eventbus.NewMemoryBus(), zap.NewNop())

			got, err := r.Reconcile(context.Background(), "p1", 7)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, writer.progress)
			assert.Equal(t, "p1", writer.projectID)
		})
	}
}

func TestReconcileSignalsProgressKey(t *testing.T) {
	bus := eventbus.NewMemoryBus()
	var gotKey string
	_, err := bus.Subscribe(context.Background(), "project-progress-updated-", func(key, value string) {
		gotKey = key
	})
	require.NoError(t, err)

	r := NewReconciler(&fakeTaskLister{tasks: tasksWith(1, 2)}, &fakeProgressWriter{}, bus, zap.NewNop())
	_, err = r.Reconcile(context.Background(), "p1", 7)
	require.NoError(t, err)

	assert.Equal(t, eventbus.ProgressKey("p1"), gotKey)
}

func TestReconcileReadFailure(t *testing.T) {
	lister := &fakeTaskLister{err: errors.New("db down")}
	writer := &fakeProgressWriter{}
	r := NewReconciler(lister, writer, eventbus.NewMemoryBus(), zap.NewNop())

	_, err := r.Reconcile(context.Background(), "p1", 7)
	assert.Error(t, err)
	assert.Zero(t, writer.calls)
}

func TestReconcileWriteFailure(t *testing.T) {
	lister := &fakeTaskLister{tasks: tasksWith(1, 2)}
	writer := &fakeProgressWriter{err: errors.New("db down")}
	r := NewReconciler(lister, writer, eventbus.NewMemoryBus(), zap.NewNop())

	_, err := r.Reconcile(context.Background(), "p1", 7)
	assert.Error(t, err)
	assert.Equal(t, 1, writer.calls)
}
