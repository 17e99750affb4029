package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

type DraftInput struct {
	Caption   string
	ImageURL  *string
	Status    string
	Platforms []string
}

// PlannerService manages posts in the unscheduled partition.
type PlannerService interface {
	CreateDraft(ctx context.Context, userID int64, projectID string, in DraftInput) (*models.Post, error)
	ListDrafts(ctx context.Context, userID int64, projectID string) ([]*models.Post, error)
	UpdateDraft(ctx context.Context, userID int64, projectID, postID string, in DraftInput) (*models.Post, error)
	DeleteDraft(ctx context.Context, userID int64, projectID, postID string) error
}

type plannerService struct {
	posts     repository.PostRepository
	guard     OwnershipGuard
	platforms PlatformSet
}

func NewPlannerService(posts repository.PostRepository, guard OwnershipGuard, platforms PlatformSet) PlannerService {
	return &plannerService{posts: posts, guard: guard, platforms: platforms}
}

func draftStatus(status string) (string, error) {
	switch status {
	case "":
		return models.PostStatusDraft, nil
	case models.PostStatusDraft, models.PostStatusReady:
		return status, nil
	default:
		return "", fmt.Errorf("%w: status must be draft or ready", ErrInvalidRequest)
	}
}

func (s *plannerService) CreateDraft(ctx context.Context, userID int64, projectID string, in DraftInput) (*models.Post, error) {
	project, err := s.guard.AuthorizeProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	status, err := draftStatus(in.Status)
	if err != nil {
		return nil, err
	}
	platforms, err := s.platforms.Resolve(in.Platforms)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:             uuid.NewString(),
		ProjectID:      &project.ID,
		ClientID:       project.ClientID,
		Caption:        in.Caption,
		ImageURL:       in.ImageURL,
		Status:         status,
		Platforms:      platforms,
		ApprovalStatus: models.ApprovalDraft,
	}
	if err := s.posts.CreateUnscheduled(ctx, nil, post); err != nil {
		return nil, storeErr("create post", err)
	}
	return post, nil
}

func (s *plannerService) ListDrafts(ctx context.Context, userID int64, projectID string) ([]*models.Post, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListUnscheduled(ctx, projectID)
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	return posts, nil
}

func (s *plannerService) draftInProject(ctx context.Context, projectID, postID string) (*models.Post, error) {
	post, err := s.posts.GetUnscheduled(ctx, postID)
	if err != nil {
		return nil, storeErr("get post", err)
	}
	if !belongsTo(post, projectID) {
		return nil, ErrNotFound
	}
	return post, nil
}

// UpdateDraft replaces the editable fields of an unscheduled post. A nil
// ImageURL keeps the stored image.
func (s *plannerService) UpdateDraft(ctx context.Context, userID int64, projectID, postID string, in DraftInput) (*models.Post, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	post, err := s.draftInProject(ctx, projectID, postID)
	if err != nil {
		return nil, err
	}

	status, err := draftStatus(in.Status)
	if err != nil {
		return nil, err
	}
	platforms, err := s.platforms.Resolve(in.Platforms)
	if err != nil {
		return nil, err
	}

	post.Caption = in.Caption
	post.Status = status
	post.Platforms = platforms
	if in.ImageURL != nil {
		post.ImageURL = in.ImageURL
	}

	if err := s.posts.UpdateUnscheduled(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update post", err)
	}
	return post, nil
}

func (s *plannerService) DeleteDraft(ctx context.Context, userID int64, projectID, postID string) error {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return err
	}

	post, err := s.draftInProject(ctx, projectID, postID)
	if err != nil {
		return err
	}

	if err := s.posts.RemoveUnscheduled(ctx, nil, post.ID); err != nil {
		return storeErr("delete post", err)
	}
	return nil
}
