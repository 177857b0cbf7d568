package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"checklistapp/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Insert creates the project row and assigns its id.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	r.logger.Debug("Inserting project",
		zap.Int("owner_id", p.OwnerID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (
            id, owner_id, name, type, technologies, progress,
            period, team_type, description, attachments, is_team,
            start_date, end_date, created_at
        )
        VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := r.db.Exec(ctx, query,
		id,
		p.OwnerID,
		p.Name,
		p.Type,
		p.Technologies,
		p.Period,
		p.TeamType,
		p.Description,
		p.Attachments,
		p.IsTeam,
		p.StartDate,
		p.EndDate,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.Int("owner_id", p.OwnerID),
		)
		return "", err
	}

	p.ID = id
	p.Progress = 0
	p.CreatedAt = now

	r.logger.Info("Project inserted successfully",
		zap.String("project_id", id),
		zap.Int("owner_id", p.OwnerID),
	)
	return id, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.Project, error) {
	r.logger.Debug("Listing projects for owner", zap.Int("owner_id", ownerID))
	query := `
        SELECT id, owner_id, name, type, technologies, progress,
               period, team_type, description, attachments, is_team,
               start_date, end_date, created_at
        FROM projects
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to query projects",
			zap.Error(err),
			zap.Int("owner_id", ownerID),
		)
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Name,
			&p.Type,
			&p.Technologies,
			&p.Progress,
			&p.Period,
			&p.TeamType,
			&p.Description,
			&p.Attachments,
			&p.IsTeam,
			&p.StartDate,
			&p.EndDate,
			&p.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row",
				zap.Error(err),
				zap.Int("owner_id", ownerID),
			)
			return nil, err
		}
		projects = append(projects, p)
	}
	r.logger.Info("Projects listed successfully",
		zap.Int("owner_id", ownerID),
		zap.Int("count", len(projects)),
	)
	return projects, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string, ownerID int) (*model.Project, error) {
	query := `
        SELECT id, owner_id, name, type, technologies, progress,
               period, team_type, description, attachments, is_team,
               start_date, end_date, created_at
        FROM projects
        WHERE id = $1 AND owner_id = $2
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Type,
		&p.Technologies,
		&p.Progress,
		&p.Period,
		&p.TeamType,
		&p.Description,
		&p.Attachments,
		&p.IsTeam,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProgress writes the derived completion percentage. Last writer wins;
// progress is advisory, not authoritative task state.
func (r *ProjectRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	query := `
        UPDATE projects
        SET progress = $2
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id, progress)
	if err != nil {
		r.logger.Error("Failed to update project progress",
			zap.Error(err),
			zap.String("project_id", id),
		)
		return err
	}
	r.logger.Info("Project progress updated",
		zap.String("project_id", id),
		zap.Int("progress", progress),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// Delete removes the project row. Returns the number of rows affected so a
// non-owner delete reads as zero effect.
func (r *ProjectRepository) Delete(ctx context.Context, id string, ownerID int) (int64, error) {
	query := `
        DELETE FROM projects
        WHERE id = $1 AND owner_id = $2
    `
	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete project",
			zap.Error(err),
			zap.String("project_id", id),
			zap.Int("owner_id", ownerID),
		)
		return 0, err
	}
	rowsAffected := result.RowsAffected()
	r.logger.Info("Project deleted",
		zap.String("project_id", id),
		zap.Int64("rows_affected", rowsAffected),
	)
	return rowsAffected, nil
}
