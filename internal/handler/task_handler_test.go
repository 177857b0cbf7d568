package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklistapp/internal/model"
)

type fakeTaskStore struct {
	inserted     *model.Task
	insertErr    error
	tasks        []model.Task
	toggledTo    *bool
	toggleProjID string
	toggleErr    error
	updateRows   int64
	updateErr    error
}

func (f *fakeTaskStore) Insert(ctx context.Context, t *model.Task) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	t.ID = "task-1"
	f.inserted = t
	return t.ID, nil
}

func (f *fakeTaskStore) ListByProject(ctx context.Context, projectID string, ownerID int) ([]model.Task, error) {
	return f.tasks, nil
}

func (f *fakeTaskStore) SetCompleted(ctx context.Context, taskID string, ownerID int, completed bool) (string, error) {
	if f.toggleErr != nil {
		return "", f.toggleErr
	}
	f.toggledTo = &completed
	return f.toggleProjID, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, t *model.Task) (int64, error) {
	return f.updateRows, f.updateErr
}

type fakeProjectGetter struct {
	err error
}

func (f *fakeProjectGetter) GetByID(ctx context.Context, id string, ownerID int) (*model.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Project{ID: id, OwnerID: ownerID}, nil
}

type fakeReconciler struct {
	progress  int
	err       error
	projectID string
}

func (f *fakeReconciler) Reconcile(ctx context.Context, projectID string, ownerID int) (int, error) {
	f.projectID = projectID
	return f.progress, f.err
}

func taskRouter(ts *fakeTaskStore, pg *fakeProjectGetter, rec *fakeReconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTaskHandler(ts, pg, rec, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextUserIDKey, 7) })
	r.GET("/projects/:id/tasks", h.List)
	r.POST("/projects/:id/tasks", h.Create)
	r.PUT("/tasks/:id", h.Update)
	r.POST("/tasks/:id/toggle", h.Toggle)
	return r
}

func TestCreateTask(t *testing.T) {
	ts := &fakeTaskStore{}
	r := taskRouter(ts, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks", `{"title":"  Write docs  ","category":"documentation"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, ts.inserted)
	assert.Equal(t, "Write docs", ts.inserted.Title)
	assert.Equal(t, "documentation", ts.inserted.Category)
	assert.Equal(t, "proj-1", ts.inserted.ProjectID)
	assert.Equal(t, 7, ts.inserted.OwnerID)
}

func TestCreateTaskBlankTitle(t *testing.T) {
	r := taskRouter(&fakeTaskStore{}, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks", `{"title":"   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskInvalidCategory(t *testing.T) {
	r := taskRouter(&fakeTaskStore{}, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks", `{"title":"Write docs","category":"chore"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskProjectNotOwned(t *testing.T) {
	r := taskRouter(&fakeTaskStore{}, &fakeProjectGetter{err: pgx.ErrNoRows}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks", `{"title":"Write docs"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleTask(t *testing.T) {
	ts := &fakeTaskStore{toggleProjID: "proj-1"}
	rec := &fakeReconciler{progress: 50}
	r := taskRouter(ts, &fakeProjectGetter{}, rec)

	w := doJSON(t, r, http.MethodPost, "/tasks/task-1/toggle", `{"is_completed":true}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.toggledTo)
	assert.True(t, *ts.toggledTo)
	assert.Equal(t, "proj-1", rec.projectID)
	assert.Contains(t, w.Body.String(), `"progress":50`)
}

func TestToggleTaskNotFound(t *testing.T) {
	ts := &fakeTaskStore{toggleErr: pgx.ErrNoRows}
	r := taskRouter(ts, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPost, "/tasks/task-1/toggle", `{"is_completed":true}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleTaskReconcileFailureStillSucceeds(t *testing.T) {
	ts := &fakeTaskStore{toggleProjID: "proj-1"}
	rec := &fakeReconciler{err: errors.New("db down")}
	r := taskRouter(ts, &fakeProjectGetter{}, rec)

	w := doJSON(t, r, http.MethodPost, "/tasks/task-1/toggle", `{"is_completed":false}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.toggledTo)
	assert.False(t, *ts.toggledTo)
	assert.Contains(t, w.Body.String(), "warning")
}

func TestToggleTaskMissingFlag(t *testing.T) {
	r := taskRouter(&fakeTaskStore{}, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPost, "/tasks/task-1/toggle", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask(t *testing.T) {
	ts := &fakeTaskStore{updateRows: 1}
	r := taskRouter(ts, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPut, "/tasks/task-1", `{"title":"New title","category":"bug"}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateTaskNotFound(t *testing.T) {
	ts := &fakeTaskStore{updateRows: 0}
	r := taskRouter(ts, &fakeProjectGetter{}, &fakeReconciler{})

	w := doJSON(t, r, http.MethodPut, "/tasks/task-1", `{"title":"New title"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
