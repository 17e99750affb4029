package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

// Decision is a client verdict on one scheduled post.
type Decision struct {
	Status  string
	Comment *string
	Actor   string
}

// Review is a decision with an optional caption edit applied before it.
type Review struct {
	Decision      Decision
	EditedCaption *string
}

type ApprovalService interface {
	Decide(ctx context.Context, clientID, postID string, d Decision) (*models.Post, error)
	EditCaption(ctx context.Context, clientID, postID, caption, editor string) (*models.Post, error)
	Resubmit(ctx context.Context, clientID, postID, actor string) (*models.Post, error)
	Review(ctx context.Context, clientID string, key models.PostKey, r Review) (*models.Post, error)
}

type approvalService struct {
	posts repository.PostRepository
	now   func() time.Time
}

func NewApprovalService(posts repository.PostRepository) ApprovalService {
	return &approvalService{posts: posts, now: time.Now}
}

func isDecision(status string) bool {
	switch status {
	case models.ApprovalApproved, models.ApprovalRejected, models.ApprovalNeedsAttention:
		return true
	}
	return false
}

// applyDecision moves a post through the approval state machine. Only a
// pending post can take a new decision. Repeating the current decision is
// accepted and refreshes the feedback.
func applyDecision(post *models.Post, d Decision) error {
	if !isDecision(d.Status) {
		return fmt.Errorf("%w: unknown approval status %q", ErrInvalidRequest, d.Status)
	}

	switch post.ApprovalStatus {
	case models.ApprovalPending, d.Status:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, post.ApprovalStatus, d.Status)
	}

	post.ApprovalStatus = d.Status
	if d.Status == models.ApprovalApproved {
		post.NeedsReapproval = false
	}
	if d.Comment != nil {
		post.ClientFeedback = d.Comment
	}
	return nil
}

// applyCaptionEdit reports whether caption differs from the stored one. The
// first edit keeps the original caption. Editing a decided post raises the
// advisory re-approval flag without touching its status.
func applyCaptionEdit(post *models.Post, caption, editor string, now time.Time) bool {
	if caption == post.Caption {
		return false
	}

	if post.OriginalCaption == nil {
		original := post.Caption
		post.OriginalCaption = &original
	}
	post.Caption = caption
	post.EditCount++
	post.LastEditedAt = &now
	if editor != "" {
		post.LastEditedBy = &editor
	}

	switch post.ApprovalStatus {
	case models.ApprovalPending, models.ApprovalDraft:
	default:
		post.NeedsReapproval = true
	}
	return true
}

func (s *approvalService) load(ctx context.Context, clientID, postID string) (*models.Post, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrInvalidRequest)
	}

	post, err := s.posts.GetScheduled(ctx, postID)
	if err != nil {
		return nil, storeErr("get scheduled post", err)
	}
	if post == nil || post.ClientID != clientID {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *approvalService) save(ctx context.Context, post *models.Post) error {
	if err := s.posts.UpdateScheduled(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storeErr("update approval", err)
	}
	return nil
}

func (s *approvalService) Decide(ctx context.Context, clientID, postID string, d Decision) (*models.Post, error) {
	if !isDecision(d.Status) {
		return nil, fmt.Errorf("%w: unknown approval status %q", ErrInvalidRequest, d.Status)
	}
	post, err := s.load(ctx, clientID, postID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, post, Review{Decision: d})
}

func (s *approvalService) EditCaption(ctx context.Context, clientID, postID, caption, editor string) (*models.Post, error) {
	post, err := s.load(ctx, clientID, postID)
	if err != nil {
		return nil, err
	}

	if !applyCaptionEdit(post, caption, editor, s.now()) {
		return post, nil
	}
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Resubmit puts a post back in front of the client. The re-approval flag
// stays until the next approval.
func (s *approvalService) Resubmit(ctx context.Context, clientID, postID, actor string) (*models.Post, error) {
	post, err := s.load(ctx, clientID, postID)
	if err != nil {
		return nil, err
	}
	if post.ApprovalStatus == models.ApprovalPending {
		return post, nil
	}

	post.ApprovalStatus = models.ApprovalPending
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	slog.Info("post resubmitted for approval", "post_id", post.ID, "actor", actor)
	return post, nil
}

// Review applies an optional caption edit and then the decision, and stores
// both in one write. Nothing is stored when the decision is rejected.
func (s *approvalService) Review(ctx context.Context, clientID string, key models.PostKey, r Review) (*models.Post, error) {
	if !key.Kind.Scheduled() {
		return nil, ErrNotApprovable
	}
	if !isDecision(r.Decision.Status) {
		return nil, fmt.Errorf("%w: unknown approval status %q", ErrInvalidRequest, r.Decision.Status)
	}

	post, err := s.load(ctx, clientID, key.ID)
	if err != nil {
		return nil, err
	}
	// a key names one kind; the same id under another kind does not resolve
	if models.KindOf(post) != key.Kind {
		return nil, ErrNotFound
	}
	return s.apply(ctx, post, r)
}

func (s *approvalService) apply(ctx context.Context, post *models.Post, r Review) (*models.Post, error) {
	if r.EditedCaption != nil {
		applyCaptionEdit(post, *r.EditedCaption, r.Decision.Actor, s.now())
	}
	if err := applyDecision(post, r.Decision); err != nil {
		return nil, err
	}

	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	slog.Info("approval recorded", "post_id", post.ID, "status", post.ApprovalStatus, "needs_reapproval", post.NeedsReapproval)
	return post, nil
}
