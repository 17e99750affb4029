package service

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

// OwnershipGuard confirms an agency user owns a client or project before any
// read or write on it. A missing resource and someone else's resource are
// both ErrForbidden, so callers cannot learn which ids exist.
type OwnershipGuard interface {
	AuthorizeProject(ctx context.Context, userID int64, projectID string) (*models.Project, error)
	AuthorizeClient(ctx context.Context, userID int64, clientID string) (*models.Client, error)
}

type ownershipGuard struct {
	cr repository.ClientRepository
	pr repository.ProjectRepository
}

func NewOwnershipGuard(cr repository.ClientRepository, pr repository.ProjectRepository) OwnershipGuard {
	return &ownershipGuard{cr: cr, pr: pr}
}

func (g *ownershipGuard) AuthorizeProject(ctx context.Context, userID int64, projectID string) (*models.Project, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if projectID == "" {
		return nil, ErrInvalidRequest
	}

	project, err := g.pr.GetByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if project == nil {
		slog.Info("project access denied", "user_id", userID, "project_id", projectID)
		return nil, ErrForbidden
	}

	owner, ok, err := g.pr.GetOwnerID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get project owner", err)
	}
	if !ok || owner != userID {
		slog.Info("project access denied", "user_id", userID, "project_id", projectID)
		return nil, ErrForbidden
	}
	return project, nil
}

func (g *ownershipGuard) AuthorizeClient(ctx context.Context, userID int64, clientID string) (*models.Client, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if clientID == "" {
		return nil, ErrInvalidRequest
	}

	client, err := g.cr.GetByID(ctx, clientID)
	if err != nil {
		return nil, storeErr("get client", err)
	}
	if client == nil || client.UserID != userID {
		slog.Info("client access denied", "user_id", userID, "client_id", clientID)
		return nil, ErrForbidden
	}
	return client, nil
}
