package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/models"
)

type PortalTokenRepository interface {
	GetClientID(ctx context.Context, token string) (string, bool, error)
	ListByClientID(ctx context.Context, clientID string) ([]*models.PortalToken, error)
	Create(ctx context.Context, t *models.PortalToken) (int64, error)
	CheckByClientID(ctx context.Context, tokenID int64, clientID string) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type portalTokenRepository struct {
	db *sql.DB
}

func NewPortalTokenRepository(db *sql.DB) PortalTokenRepository {
	return &portalTokenRepository{db: db}
}

func (r *portalTokenRepository) GetClientID(ctx context.Context, token string) (string, bool, error) {
	var clientID string
	query := "SELECT client_id FROM portal_tokens WHERE token = $1"
	err := r.db.QueryRowContext(ctx, query, token).Scan(&clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		slog.Info(err.Error())
		return "", false, err
	}
	return clientID, true, nil
}

func (r *portalTokenRepository) ListByClientID(ctx context.Context, clientID string) ([]*models.PortalToken, error) {
	query := `SELECT id, client_id, token, created_at FROM portal_tokens WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var tokens []*models.PortalToken
	for rows.Next() {
		var t models.PortalToken
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Token, &t.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

func (r *portalTokenRepository) Create(ctx context.Context, t *models.PortalToken) (int64, error) {
	query := "INSERT INTO portal_tokens (client_id, token) VALUES ($1, $2) RETURNING id"
	var id int64
	err := r.db.QueryRowContext(ctx, query, t.ClientID, t.Token).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *portalTokenRepository) CheckByClientID(ctx context.Context, tokenID int64, clientID string) (bool, error) {
	query := "SELECT 1 FROM portal_tokens WHERE id = $1 AND client_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, tokenID, clientID).Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *portalTokenRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM portal_tokens WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
