package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/models"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT id, user_id, name, late_profile_id, created_at, updated_at FROM clients WHERE id = $1`

	var c models.Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Name, &c.LateProfileID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetOwnerID(ctx context.Context, projectID string) (int64, bool, error)
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT id, client_id, name, created_at, updated_at FROM projects WHERE id = $1`

	var p models.Project
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.ClientID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &p, nil
}

// GetOwnerID returns the agency user owning the project's client.
func (r *projectRepository) GetOwnerID(ctx context.Context, projectID string) (int64, bool, error) {
	query := `
		SELECT c.user_id
		FROM projects p
		JOIN clients c ON c.id = p.client_id
		WHERE p.id = $1
	`

	var userID int64
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return userID, true, nil
}
