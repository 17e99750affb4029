package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/models"
)

type PublishAttemptRepository interface {
	Create(ctx context.Context, pa *models.PublishAttempt) (int64, error)
	ListByPostID(ctx context.Context, postID string) ([]*models.PublishAttempt, error)
}

type publishAttemptRepository struct {
	db *sql.DB
}

func NewPublishAttemptRepository(db *sql.DB) PublishAttemptRepository {
	return &publishAttemptRepository{db: db}
}

func (r *publishAttemptRepository) Create(ctx context.Context, pa *models.PublishAttempt) (int64, error) {
	query := `
		INSERT INTO publish_attempts (post_id, platform, succeeded, external_id, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, pa.PostID, pa.Platform, pa.Succeeded, pa.ExternalID, pa.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *publishAttemptRepository) ListByPostID(ctx context.Context, postID string) ([]*models.PublishAttempt, error) {
	query := `SELECT id, post_id, platform, succeeded, external_id, error_message, created_at
		FROM publish_attempts WHERE post_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.PublishAttempt
	for rows.Next() {
		var pa models.PublishAttempt
		err := rows.Scan(&pa.ID, &pa.PostID, &pa.Platform, &pa.Succeeded, &pa.ExternalID, &pa.ErrorMessage, &pa.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		attempts = append(attempts, &pa)
	}
	return attempts, rows.Err()
}
