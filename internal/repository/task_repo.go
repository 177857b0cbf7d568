package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"checklistapp/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const insertTaskQuery = `
        INSERT INTO tasks (
            id, project_id, owner_id, title, description, category,
            is_completed, start_date, end_date, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
    `

// Insert creates a single task row and assigns its id.
func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	if t.Category == "" {
		t.Category = model.DefaultTaskCategory
	}

	r.logger.Debug("Inserting task",
		zap.String("project_id", t.ProjectID),
		zap.Int("owner_id", t.OwnerID),
		zap.String("title", t.Title),
	)

	_, err := r.db.Exec(ctx, insertTaskQuery,
		id,
		t.ProjectID,
		t.OwnerID,
		t.Title,
		t.Description,
		t.Category,
		t.IsCompleted,
		t.StartDate,
		t.EndDate,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("project_id", t.ProjectID),
			zap.String("title", t.Title),
		)
		return "", err
	}

	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now

	r.logger.Info("Task inserted successfully",
		zap.String("task_id", id),
		zap.String("project_id", t.ProjectID),
	)
	return id, nil
}

// BulkInsert creates tasks in the given order in a single batch. Used by the
// template path, where checklist order is meaningful.
func (r *TaskRepository) BulkInsert(ctx context.Context, tasks []model.Task) ([]string, error) {
	if len(tasks) == 0 {
		return []string{}, nil
	}

	now := time.Now()
	ids := make([]string, len(tasks))
	batch := &pgx.Batch{}
	for i := range tasks {
		ids[i] = uuid.NewString()
		category := tasks[i].Category
		if category == "" {
			category = model.DefaultTaskCategory
		}
		batch.Queue(insertTaskQuery,
			ids[i],
			tasks[i].ProjectID,
			tasks[i].OwnerID,
			tasks[i].Title,
			tasks[i].Description,
			category,
			tasks[i].IsCompleted,
			tasks[i].StartDate,
			tasks[i].EndDate,
			now,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range tasks {
		if _, err := results.Exec(); err != nil {
			r.logger.Error("Failed to bulk insert tasks",
				zap.Error(err),
				zap.Int("index", i),
				zap.String("title", tasks[i].Title),
			)
			return nil, err
		}
	}

	r.logger.Info("Tasks bulk inserted successfully",
		zap.String("project_id", tasks[0].ProjectID),
		zap.Int("count", len(tasks)),
	)
	return ids, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string, ownerID int) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for project",
		zap.String("project_id", projectID),
		zap.Int("owner_id", ownerID),
	)
	query := `
        SELECT id, project_id, owner_id, title, description, category,
               is_completed, start_date, end_date, created_at, updated_at
        FROM tasks
        WHERE project_id = $1 AND owner_id = $2
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID, ownerID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.OwnerID,
			&t.Title,
			&t.Description,
			&t.Category,
			&t.IsCompleted,
			&t.StartDate,
			&t.EndDate,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row",
				zap.Error(err),
				zap.String("project_id", projectID),
			)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	r.logger.Info("Tasks listed successfully",
		zap.String("project_id", projectID),
		zap.Int("count", len(tasks)),
	)
	return tasks, nil
}

// SetCompleted flips the completion flag and returns the parent project id.
// Scoped by owner; pgx.ErrNoRows means the task does not exist or is not
// owned by the caller.
func (r *TaskRepository) SetCompleted(ctx context.Context, taskID string, ownerID int, completed bool) (string, error) {
	query := `
        UPDATE tasks
        SET is_completed = $3, updated_at = NOW()
        WHERE id = $1 AND owner_id = $2
        RETURNING project_id
    `
	var projectID string
	err := r.db.QueryRow(ctx, query, taskID, ownerID, completed).Scan(&projectID)
	if err != nil {
		r.logger.Error("Failed to toggle task",
			zap.Error(err),
			zap.String("task_id", taskID),
			zap.Int("owner_id", ownerID),
		)
		return "", err
	}
	r.logger.Info("Task completion toggled",
		zap.String("task_id", taskID),
		zap.Bool("is_completed", completed),
	)
	return projectID, nil
}

// Update edits the authored fields. Completion is not touched here; toggling
// goes through SetCompleted so progress reconciliation stays on one trigger.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) (int64, error) {
	query := `
        UPDATE tasks
        SET title = $3, description = $4, category = $5,
            start_date = $6, end_date = $7, updated_at = NOW()
        WHERE id = $1 AND owner_id = $2
    `
	result, err := r.db.Exec(ctx, query,
		t.ID,
		t.OwnerID,
		t.Title,
		t.Description,
		t.Category,
		t.StartDate,
		t.EndDate,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.String("task_id", t.ID),
		)
		return 0, err
	}
	rowsAffected := result.RowsAffected()
	r.logger.Info("Task updated",
		zap.String("task_id", t.ID),
		zap.Int64("rows_affected", rowsAffected),
	)
	return rowsAffected, nil
}

// DeleteByProject removes all tasks of a project. Runs before the project
// delete so no orphaned tasks remain.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string, ownerID int) (int64, error) {
	query := `
        DELETE FROM tasks
        WHERE project_id = $1 AND owner_id = $2
    `
	result, err := r.db.Exec(ctx, query, projectID, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete tasks for project",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return 0, err
	}
	rowsAffected := result.RowsAffected()
	r.logger.Info("Tasks deleted for project",
		zap.String("project_id", projectID),
		zap.Int64("rows_affected", rowsAffected),
	)
	return rowsAffected, nil
}
