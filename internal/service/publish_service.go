package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/publisher"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type PlatformResult struct {
	Platform   string `json:"platform"`
	Succeeded  bool   `json:"succeeded"`
	Skipped    bool   `json:"skipped"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type PublishResult struct {
	PostID             string           `json:"post_id"`
	Status             string           `json:"status"`
	LateStatus         string           `json:"late_status"`
	PlatformsScheduled []string         `json:"platforms_scheduled"`
	Platforms          []PlatformResult `json:"platforms"`
}

type PublishService interface {
	Publish(ctx context.Context, userID int64, projectID, postID string) (*PublishResult, error)
	Attempts(ctx context.Context, userID int64, projectID, postID string) ([]*models.PublishAttempt, error)
}

type publishService struct {
	posts       repository.PostRepository
	attempts    repository.PublishAttemptRepository
	clients     repository.ClientRepository
	guard       OwnershipGuard
	publisher   publisher.Client
	timezone    string
	concurrency int
}

func NewPublishService(
	posts repository.PostRepository,
	attempts repository.PublishAttemptRepository,
	clients repository.ClientRepository,
	guard OwnershipGuard,
	pub publisher.Client,
	timezone string,
	concurrency int) PublishService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &publishService{
		posts:       posts,
		attempts:    attempts,
		clients:     clients,
		guard:       guard,
		publisher:   pub,
		timezone:    timezone,
		concurrency: concurrency,
	}
}

func missingPlatforms(post *models.Post) []string {
	var missing []string
	for _, p := range post.Platforms {
		if !post.HasPlatformScheduled(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

func checkPublishable(post *models.Post) error {
	if post.ApprovalStatus != models.ApprovalApproved {
		return fmt.Errorf("%w: approval status is %s", ErrNotPublishable, post.ApprovalStatus)
	}
	switch post.Status {
	case models.PostStatusScheduled:
		return nil
	case models.PostStatusPublished:
		if len(missingPlatforms(post)) > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: status is %s", ErrNotPublishable, post.Status)
}

// Publish sends the post to every target platform not yet accepted by the
// publishing service. Platforms are attempted independently; one failing
// never stops the others. Re-running only retries what is still missing.
func (s *publishService) Publish(ctx context.Context, userID int64, projectID, postID string) (*PublishResult, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetScheduled(ctx, postID)
	if err != nil {
		return nil, storeErr("get scheduled post", err)
	}
	if !belongsTo(post, projectID) {
		return nil, ErrNotFound
	}
	if err := checkPublishable(post); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(ctx, post.ClientID)
	if err != nil {
		return nil, storeErr("get client", err)
	}
	profileID := ""
	if client != nil {
		profileID = client.LateProfileID
	}

	results := make([]PlatformResult, len(post.Platforms))
	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, s.concurrency)
	)

	for i, platform := range post.Platforms {
		if post.HasPlatformScheduled(platform) {
			results[i] = PlatformResult{Platform: platform, Succeeded: true, Skipped: true}
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, platform string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[i] = s.publishTo(ctx, post, platform, profileID)
		}(i, platform)
	}
	wg.Wait()

	scheduled := slices.Clone(post.PlatformsScheduled)
	for _, r := range results {
		if r.Skipped || !r.Succeeded {
			continue
		}
		if !slices.Contains(scheduled, r.Platform) {
			scheduled = append(scheduled, r.Platform)
		}
		if post.LatePostID == nil && r.ExternalID != "" {
			post.LatePostID = strPtr(r.ExternalID)
		}
	}

	post.PlatformsScheduled = scheduled
	lateStatus := models.LateStatusFailed
	if len(scheduled) > 0 {
		lateStatus = models.LateStatusPublished
		post.Status = models.PostStatusPublished
	}
	post.LateStatus = &lateStatus

	if err := s.posts.UpdateScheduled(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("record publish outcome", err)
	}

	slog.Info("post published", "post_id", post.ID, "late_status", lateStatus, "platforms_scheduled", scheduled)
	return &PublishResult{
		PostID:             post.ID,
		Status:             post.Status,
		LateStatus:         lateStatus,
		PlatformsScheduled: scheduled,
		Platforms:          results,
	}, nil
}

func (s *publishService) publishTo(ctx context.Context, post *models.Post, platform, profileID string) PlatformResult {
	req := &transfer.PublishRequest{
		Content:   post.Caption,
		Platforms: []transfer.PlatformTarget{{Platform: platform}},
		Timezone:  s.timezone,
		ProfileID: profileID,
	}
	if day := post.DayKey(); day != "" && post.ScheduledTime != nil {
		req.ScheduledFor = day + "T" + *post.ScheduledTime
	}
	if post.ImageURL != nil && *post.ImageURL != "" {
		req.MediaItems = []transfer.MediaItem{{Type: "image", URL: *post.ImageURL}}
	}

	result := PlatformResult{Platform: platform}
	attempt := models.PublishAttempt{PostID: post.ID, Platform: platform}

	resp, err := s.publisher.Publish(ctx, req)
	if err != nil {
		slog.Warn("publish failed", "post_id", post.ID, "platform", platform, "error", err)
		result.Error = err.Error()
		attempt.ErrorMessage = err.Error()
	} else {
		result.Succeeded = true
		result.ExternalID = resp.Post.ID
		attempt.Succeeded = true
		attempt.ExternalID = resp.Post.ID
	}

	if _, err := s.attempts.Create(ctx, &attempt); err != nil {
		slog.Error("save publish attempt", "post_id", post.ID, "platform", platform, "error", err)
	}
	return result
}

// Attempts lists the delivery history of a post, oldest first.
func (s *publishService) Attempts(ctx context.Context, userID int64, projectID, postID string) ([]*models.PublishAttempt, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetScheduled(ctx, postID)
	if err != nil {
		return nil, storeErr("get scheduled post", err)
	}
	if !belongsTo(post, projectID) {
		return nil, ErrNotFound
	}

	attempts, err := s.attempts.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, storeErr("list publish attempts", err)
	}
	return attempts, nil
}
