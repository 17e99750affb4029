package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

type GlobalTimeRepository interface {
	GetByProjectID(ctx context.Context, projectID string) (*models.GlobalTimeOverride, error)
	Save(ctx context.Context, o *models.GlobalTimeOverride) error
	Remove(ctx context.Context, projectID string) error
}

type globalTimeRepository struct {
	db *sql.DB
}

func NewGlobalTimeRepository(db *sql.DB) GlobalTimeRepository {
	return &globalTimeRepository{db: db}
}

func (r *globalTimeRepository) GetByProjectID(ctx context.Context, projectID string) (*models.GlobalTimeOverride, error) {
	query := `SELECT project_id, selected_time, applied, applied_at, updated_at FROM global_time_overrides WHERE project_id = $1`

	var o models.GlobalTimeOverride
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(&o.ProjectID, &o.SelectedTime, &o.Applied, &o.AppliedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &o, nil
}

func (r *globalTimeRepository) Save(ctx context.Context, o *models.GlobalTimeOverride) error {
	query := `
		INSERT INTO global_time_overrides (project_id, selected_time, applied, applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id) DO UPDATE
		SET selected_time = EXCLUDED.selected_time,
			applied = EXCLUDED.applied,
			applied_at = EXCLUDED.applied_at,
			updated_at = EXCLUDED.updated_at
	`

	o.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, o.ProjectID, o.SelectedTime, o.Applied, o.AppliedAt, o.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *globalTimeRepository) Remove(ctx context.Context, projectID string) error {
	query := `DELETE FROM global_time_overrides WHERE project_id = $1`
	_, err := r.db.ExecContext(ctx, query, projectID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
