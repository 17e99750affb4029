package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

type UploadRepository interface {
	Create(ctx context.Context, tx *sql.Tx, u *models.Upload) error
	GetByID(ctx context.Context, id string) (*models.Upload, error)
	ListByClientID(ctx context.Context, clientID string) ([]*models.Upload, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id, status string, postID *string) error
}

type uploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) UploadRepository {
	return &uploadRepository{db: db}
}

const uploadColumns = `id, client_id, project_id, file_url, file_type, file_size, notes, status, post_id, created_at, updated_at`

func scanUpload(row rowScanner) (*models.Upload, error) {
	var u models.Upload
	err := row.Scan(&u.ID, &u.ClientID, &u.ProjectID, &u.FileURL, &u.FileType, &u.FileSize, &u.Notes, &u.Status, &u.PostID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *uploadRepository) Create(ctx context.Context, tx *sql.Tx, u *models.Upload) error {
	query := `
		INSERT INTO client_uploads (id, client_id, project_id, file_url, file_type, file_size, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := conn(r.db, tx).ExecContext(ctx, query, u.ID, u.ClientID, u.ProjectID, u.FileURL, u.FileType, u.FileSize, u.Notes, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *uploadRepository) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM client_uploads WHERE id = $1`

	u, err := scanUpload(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return u, nil
}

func (r *uploadRepository) ListByClientID(ctx context.Context, clientID string) ([]*models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM client_uploads WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var uploads []*models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return uploads, nil
}

func (r *uploadRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id, status string, postID *string) error {
	query := `
		UPDATE client_uploads
		SET status = $1,
			post_id = COALESCE($2, post_id),
			updated_at = $3
		WHERE id = $4
	`
	result, err := conn(r.db, tx).ExecContext(ctx, query, status, postID, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return checkAffected(result)
}
