package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

// CalendarCache holds serialized client calendar ranges for a short window.
type CalendarCache interface {
	Get(ctx context.Context, clientID, rangeKey string) ([]byte, bool, error)
	Set(ctx context.Context, clientID, rangeKey string, payload []byte) error
	Invalidate(ctx context.Context, clientID string) error
}

// MoveCommand asks to drop the post identified by Key onto Target, a day id
// or another post's key.
type MoveCommand struct {
	Key    models.PostKey
	Target string
}

// MoveResult carries both sides of a move so a client that applied it
// optimistically can roll back.
type MoveResult struct {
	Key      models.PostKey `json:"key"`
	Moved    bool           `json:"moved"`
	FromDate string         `json:"from_date"`
	ToDate   string         `json:"to_date"`
	FromTime *string        `json:"from_time"`
	ToTime   *string        `json:"to_time"`
	Post     *models.Post   `json:"post"`
}

type Calendar map[string][]models.CalendarItem

type CalendarService interface {
	Move(ctx context.Context, userID int64, projectID string, cmd MoveCommand) (*MoveResult, error)
	ProjectCalendar(ctx context.Context, userID int64, projectID, startDate, endDate string) (Calendar, error)
	ClientCalendar(ctx context.Context, clientID, startDate, endDate string, refresh bool) (Calendar, error)
}

type calendarService struct {
	posts        repository.PostRepository
	uploads      repository.UploadRepository
	overrides    repository.GlobalTimeRepository
	guard        OwnershipGuard
	cache        CalendarCache
	queryTimeout time.Duration
}

func NewCalendarService(
	posts repository.PostRepository,
	uploads repository.UploadRepository,
	overrides repository.GlobalTimeRepository,
	guard OwnershipGuard,
	cache CalendarCache,
	queryTimeout time.Duration) CalendarService {
	return &calendarService{
		posts:        posts,
		uploads:      uploads,
		overrides:    overrides,
		guard:        guard,
		cache:        cache,
		queryTimeout: queryTimeout,
	}
}

func (s *calendarService) Move(ctx context.Context, userID int64, projectID string, cmd MoveCommand) (*MoveResult, error) {
	project, err := s.guard.AuthorizeProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !cmd.Key.Kind.Scheduled() {
		return nil, ErrNotReschedulable
	}

	posts, err := s.posts.ListScheduled(ctx, projectID)
	if err != nil {
		return nil, storeErr("list scheduled posts", err)
	}
	ix := BuildDayIndex(posts)

	from, ok := ix.BucketOf(cmd.Key)
	if !ok {
		return nil, ErrNotFound
	}
	to, err := s.resolveTarget(ctx, ix, project, cmd.Target)
	if err != nil {
		return nil, err
	}

	post, _ := ix.Post(cmd.Key.ID)
	result := &MoveResult{
		Key:      cmd.Key,
		FromDate: from,
		ToDate:   to,
		FromTime: post.ScheduledTime,
		ToTime:   post.ScheduledTime,
		Post:     post,
	}
	if to == from {
		return result, nil
	}

	day, err := ParseDay(to)
	if err != nil {
		return nil, ErrInvalidDropTarget
	}

	override, err := s.overrides.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get global time", err)
	}

	moved := *post
	moved.ScheduledDate = &day
	if at, ok := override.ActiveTime(); ok {
		moved.ScheduledTime = &at
	}

	if err := s.posts.UpdateScheduled(ctx, &moved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("move post", err)
	}
	s.invalidate(ctx, moved.ClientID)

	result.Moved = true
	result.ToTime = moved.ScheduledTime
	result.Post = &moved
	slog.Info("post moved", "post_id", moved.ID, "from", from, "to", to)
	return result, nil
}

// resolveTarget extends DayIndex.ResolveTarget with upload cards, which sit
// on the day they were uploaded.
func (s *calendarService) resolveTarget(ctx context.Context, ix *DayIndex, project *models.Project, target string) (string, error) {
	key, err := models.ParsePostKey(target)
	if err != nil || key.Kind != models.KindClientUpload {
		return ix.ResolveTarget(target)
	}

	upload, err := s.uploads.GetByID(ctx, key.ID)
	if err != nil {
		return "", storeErr("get upload", err)
	}
	day, ok := uploadDay(upload, project)
	if !ok {
		return "", ErrInvalidDropTarget
	}
	return models.DayKey(day), nil
}

// uploadDay reports the calendar day of an upload card, or false when the
// upload is not shown on the project's calendar.
func uploadDay(u *models.Upload, project *models.Project) (time.Time, bool) {
	if u == nil || u.ClientID != project.ClientID || u.PostID != nil {
		return time.Time{}, false
	}
	if u.ProjectID != nil && *u.ProjectID != project.ID {
		return time.Time{}, false
	}
	return u.CreatedAt.UTC().Truncate(24 * time.Hour), true
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := ParseDay(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDay(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate is before startDate", ErrInvalidRequest)
	}
	return start, end, nil
}

func inRange(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

// ProjectCalendar returns the project's scheduled posts and the client's open
// uploads bucketed by day.
func (s *calendarService) ProjectCalendar(ctx context.Context, userID int64, projectID, startDate, endDate string) (Calendar, error) {
	project, err := s.guard.AuthorizeProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListScheduled(ctx, projectID)
	if err != nil {
		return nil, storeErr("list scheduled posts", err)
	}

	var inWindow []*models.Post
	for _, p := range posts {
		if p.ScheduledDate != nil && inRange(*p.ScheduledDate, start, end) {
			inWindow = append(inWindow, p)
		}
	}
	calendar := groupPosts(inWindow)

	uploads, err := s.uploads.ListByClientID(ctx, project.ClientID)
	if err != nil {
		return nil, storeErr("list uploads", err)
	}
	for _, u := range uploads {
		created, ok := uploadDay(u, project)
		if !ok || !inRange(created, start, end) {
			continue
		}
		day := models.DayKey(created)
		calendar[day] = append(calendar[day], models.UploadItem{Upload: u})
	}
	return calendar, nil
}

// ClientCalendar is the portal view. Results are served from the cache for a
// short window unless refresh is set.
func (s *calendarService) ClientCalendar(ctx context.Context, clientID, startDate, endDate string, refresh bool) (Calendar, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	rangeKey := models.DayKey(start) + ":" + models.DayKey(end)

	posts, hit := s.cached(ctx, clientID, rangeKey, refresh)
	if !hit {
		qctx := ctx
		if s.queryTimeout > 0 {
			var cancel context.CancelFunc
			qctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
			defer cancel()
		}

		posts, err = s.posts.ListScheduledByClient(qctx, clientID, start, end)
		if err != nil {
			return nil, storeErr("list client calendar", err)
		}
		s.store(ctx, clientID, rangeKey, posts)
	}

	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: no posts between %s and %s", ErrNotFound, startDate, endDate)
	}
	return groupPosts(posts), nil
}

func groupPosts(posts []*models.Post) Calendar {
	ix := BuildDayIndex(posts)
	calendar := make(Calendar, len(ix.Days()))
	for _, day := range ix.Days() {
		for _, p := range ix.Posts(day) {
			calendar[day] = append(calendar[day], models.ScheduledItem{Kind: models.KindOf(p), Post: p})
		}
	}
	return calendar
}

func (s *calendarService) cached(ctx context.Context, clientID, rangeKey string, refresh bool) ([]*models.Post, bool) {
	if s.cache == nil || refresh {
		return nil, false
	}

	payload, ok, err := s.cache.Get(ctx, clientID, rangeKey)
	if err != nil {
		slog.Warn("calendar cache read", "client_id", clientID, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var posts []*models.Post
	if err := json.Unmarshal(payload, &posts); err != nil {
		slog.Warn("calendar cache decode", "client_id", clientID, "error", err)
		return nil, false
	}
	return posts, true
}

func (s *calendarService) store(ctx context.Context, clientID, rangeKey string, posts []*models.Post) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(posts)
	if err != nil {
		slog.Warn("calendar cache encode", "client_id", clientID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, clientID, rangeKey, payload); err != nil {
		slog.Warn("calendar cache write", "client_id", clientID, "error", err)
	}
}

func (s *calendarService) invalidate(ctx context.Context, clientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, clientID); err != nil {
		slog.Warn("calendar cache invalidate", "client_id", clientID, "error", err)
	}
}
