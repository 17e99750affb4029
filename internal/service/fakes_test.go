package service

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func clonePost(p *models.Post) *models.Post {
	out := *p
	out.Platforms = slices.Clone(p.Platforms)
	out.PlatformsScheduled = slices.Clone(p.PlatformsScheduled)
	return &out
}

// fakePosts keeps both partitions in memory and hides rows whose move out of
// the partition is unfinished, like the SQL repository.
type fakePosts struct {
	mu          sync.Mutex
	unscheduled map[string]*models.Post
	scheduled   map[string]*models.Post
	moves       *fakeMoves
	failRemove  map[models.Partition]error
	failList    error
	updates     int
}

func newFakePosts(moves *fakeMoves) *fakePosts {
	return &fakePosts{
		unscheduled: make(map[string]*models.Post),
		scheduled:   make(map[string]*models.Post),
		moves:       moves,
		failRemove:  make(map[models.Partition]error),
	}
}

func (f *fakePosts) table(p models.Partition) map[string]*models.Post {
	if p == models.PartitionScheduled {
		return f.scheduled
	}
	return f.unscheduled
}

func (f *fakePosts) visible(p models.Partition, id string) bool {
	return f.moves == nil || !f.moves.pendingFrom(id, p)
}

func (f *fakePosts) create(p models.Partition, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.table(p)[post.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	f.table(p)[post.ID] = clonePost(post)
	return nil
}

func (f *fakePosts) get(p models.Partition, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.table(p)[id]
	if !ok || !f.visible(p, id) {
		return nil, nil
	}
	return clonePost(post), nil
}

func (f *fakePosts) update(p models.Partition, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.table(p)[post.ID]; !ok || !f.visible(p, post.ID) {
		return repository.ErrNotFound
	}
	f.updates++
	f.table(p)[post.ID] = clonePost(post)
	return nil
}

func (f *fakePosts) remove(p models.Partition, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRemove[p]; err != nil {
		return err
	}
	delete(f.table(p), id)
	return nil
}

func (f *fakePosts) list(p models.Partition, keep func(*models.Post) bool) []*models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Post
	for id, post := range f.table(p) {
		if f.visible(p, id) && keep(post) {
			out = append(out, clonePost(post))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayKey() != out[j].DayKey() {
			return out[i].DayKey() < out[j].DayKey()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// raw reads a row regardless of move visibility.
func (f *fakePosts) raw(p models.Partition, id string) (*models.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.table(p)[id]
	return post, ok
}

func inProject(projectID string) func(*models.Post) bool {
	return func(p *models.Post) bool { return p.ProjectID != nil && *p.ProjectID == projectID }
}

func (f *fakePosts) CreateUnscheduled(_ context.Context, _ *sql.Tx, post *models.Post) error {
	return f.create(models.PartitionUnscheduled, post)
}

func (f *fakePosts) GetUnscheduled(_ context.Context, id string) (*models.Post, error) {
	return f.get(models.PartitionUnscheduled, id)
}

func (f *fakePosts) ListUnscheduled(_ context.Context, projectID string) ([]*models.Post, error) {
	return f.list(models.PartitionUnscheduled, inProject(projectID)), nil
}

func (f *fakePosts) UpdateUnscheduled(_ context.Context, post *models.Post) error {
	return f.update(models.PartitionUnscheduled, post)
}

func (f *fakePosts) RemoveUnscheduled(_ context.Context, _ *sql.Tx, id string) error {
	return f.remove(models.PartitionUnscheduled, id)
}

func (f *fakePosts) CreateScheduled(_ context.Context, _ *sql.Tx, post *models.Post) error {
	return f.create(models.PartitionScheduled, post)
}

func (f *fakePosts) GetScheduled(_ context.Context, id string) (*models.Post, error) {
	return f.get(models.PartitionScheduled, id)
}

func (f *fakePosts) ListScheduled(_ context.Context, projectID string) ([]*models.Post, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	return f.list(models.PartitionScheduled, inProject(projectID)), nil
}

func (f *fakePosts) ListScheduledByClient(ctx context.Context, clientID string, start, end time.Time) ([]*models.Post, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	return f.list(models.PartitionScheduled, func(p *models.Post) bool {
		return p.ClientID == clientID && p.ScheduledDate != nil &&
			!p.ScheduledDate.Before(start) && !p.ScheduledDate.After(end)
	}), nil
}

func (f *fakePosts) UpdateScheduled(_ context.Context, post *models.Post) error {
	return f.update(models.PartitionScheduled, post)
}

func (f *fakePosts) UpdateScheduledTimes(_ context.Context, projectID string, postIDs []string, scheduledTime string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, post := range f.scheduled {
		if post.ProjectID == nil || *post.ProjectID != projectID || post.Status != models.PostStatusScheduled {
			continue
		}
		if len(postIDs) > 0 && !slices.Contains(postIDs, id) {
			continue
		}
		at := scheduledTime
		post.ScheduledTime = &at
		n++
	}
	return n, nil
}

func (f *fakePosts) RemoveScheduled(_ context.Context, _ *sql.Tx, id string) error {
	return f.remove(models.PartitionScheduled, id)
}

type fakeMoves struct {
	mu    sync.Mutex
	moves map[string]*models.PartitionMove
}

func newFakeMoves() *fakeMoves {
	return &fakeMoves{moves: make(map[string]*models.PartitionMove)}
}

func (f *fakeMoves) pendingFrom(postID string, source models.Partition) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.moves {
		if m.PostID == postID && m.Source == source && m.Status != models.MoveStatusDone {
			return true
		}
	}
	return false
}

func (f *fakeMoves) get(id string) *models.PartitionMove {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.moves[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

func (f *fakeMoves) Create(_ context.Context, _ *sql.Tx, m *models.PartitionMove) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.moves[m.ID] = &cp
	return nil
}

func (f *fakeMoves) GetByID(_ context.Context, id string) (*models.PartitionMove, error) {
	return f.get(id), nil
}

func (f *fakeMoves) MarkDone(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.moves[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = models.MoveStatusDone
	return nil
}

func (f *fakeMoves) ResolveForPost(_ context.Context, _ *sql.Tx, postID string, source models.Partition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.moves {
		if m.PostID == postID && m.Source == source && m.Status != models.MoveStatusDone {
			m.Status = models.MoveStatusDone
		}
	}
	return nil
}

func (f *fakeMoves) RecordFailure(_ context.Context, id string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.moves[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Attempts++
	m.LastError = errMsg
	m.UpdatedAt = time.Now()
	return nil
}

func (f *fakeMoves) ListPending(_ context.Context, olderThan time.Time, limit int) ([]*models.PartitionMove, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PartitionMove
	for _, m := range f.moves {
		if m.Status == models.MoveStatusPending && !m.UpdatedAt.After(olderThan) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeRetrier struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeRetrier) EnqueueReconcile(_ context.Context, moveID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, moveID)
	return nil
}

type fakeOverrides struct {
	mu        sync.Mutex
	overrides map[string]*models.GlobalTimeOverride
}

func newFakeOverrides() *fakeOverrides {
	return &fakeOverrides{overrides: make(map[string]*models.GlobalTimeOverride)}
}

func (f *fakeOverrides) GetByProjectID(_ context.Context, projectID string) (*models.GlobalTimeOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.overrides[projectID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOverrides) Save(_ context.Context, o *models.GlobalTimeOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.overrides[o.ProjectID] = &cp
	return nil
}

func (f *fakeOverrides) Remove(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.overrides, projectID)
	return nil
}

type fakeClients struct {
	clients map[string]*models.Client
}

func (f *fakeClients) GetByID(_ context.Context, id string) (*models.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

type fakeProjects struct {
	projects map[string]*models.Project
	owners   map[string]int64
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeProjects) GetOwnerID(_ context.Context, projectID string) (int64, bool, error) {
	owner, ok := f.owners[projectID]
	return owner, ok, nil
}

type fakeUploads struct {
	mu      sync.Mutex
	uploads map[string]*models.Upload
}

func newFakeUploads() *fakeUploads {
	return &fakeUploads{uploads: make(map[string]*models.Upload)}
}

func (f *fakeUploads) Create(_ context.Context, _ *sql.Tx, u *models.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.uploads[u.ID] = &cp
	return nil
}

func (f *fakeUploads) GetByID(_ context.Context, id string) (*models.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUploads) ListByClientID(_ context.Context, clientID string) ([]*models.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Upload
	for _, u := range f.uploads {
		if u.ClientID == clientID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUploads) UpdateStatus(_ context.Context, _ *sql.Tx, id, status string, postID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	if postID != nil {
		u.PostID = postID
	}
	return nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	attempts []*models.PublishAttempt
}

func (f *fakeAttempts) Create(_ context.Context, pa *models.PublishAttempt) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *pa
	cp.ID = int64(len(f.attempts) + 1)
	f.attempts = append(f.attempts, &cp)
	return cp.ID, nil
}

func (f *fakeAttempts) ListByPostID(_ context.Context, postID string) ([]*models.PublishAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PublishAttempt
	for _, a := range f.attempts {
		if a.PostID == postID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakePublisher fails the platforms listed in fail and accepts the rest.
type fakePublisher struct {
	mu       sync.Mutex
	fail     map[string]error
	requests []*transfer.PublishRequest
}

func (f *fakePublisher) Publish(_ context.Context, req *transfer.PublishRequest) (*transfer.PublishResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	platform := req.Platforms[0].Platform
	if err := f.fail[platform]; err != nil {
		return nil, err
	}
	resp := &transfer.PublishResponse{Message: "scheduled"}
	resp.Post.ID = "late-" + platform
	resp.Post.Status = "scheduled"
	return resp, nil
}

func (f *fakePublisher) platforms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Platforms[0].Platform)
	}
	sort.Strings(out)
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	gets        int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, clientID, rangeKey string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	b, ok := f.entries[clientID+"|"+rangeKey]
	return b, ok, nil
}

func (f *fakeCache) Set(_ context.Context, clientID, rangeKey string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[clientID+"|"+rangeKey] = payload
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.entries {
		if len(k) > len(clientID) && k[:len(clientID)+1] == clientID+"|" {
			delete(f.entries, k)
		}
	}
	f.invalidated = append(f.invalidated, clientID)
	return nil
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeStorage) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://cdn.contentflow.test/" + key, nil
}

const (
	ownerID    int64 = 7
	strangerID int64 = 8
	clientA          = "client-a"
	projectA         = "project-a"
)

// fixture wires the services against the in-memory fakes with one client
// and one project owned by ownerID.
type fixture struct {
	posts     *fakePosts
	moves     *fakeMoves
	overrides *fakeOverrides
	uploads   *fakeUploads
	attempts  *fakeAttempts
	publisher *fakePublisher
	cache     *fakeCache
	storage   *fakeStorage
	retrier   *fakeRetrier
	clients   *fakeClients
	projects  *fakeProjects

	guard      OwnershipGuard
	mover      *PartitionMover
	scheduling SchedulingService
	planner    PlannerService
	calendar   CalendarService
	approvals  ApprovalService
	batch      BatchApprovalService
	publish    PublishService
	upload     UploadService
}

func newFixture() *fixture {
	f := &fixture{
		moves:     newFakeMoves(),
		overrides: newFakeOverrides(),
		uploads:   newFakeUploads(),
		attempts:  &fakeAttempts{},
		publisher: &fakePublisher{fail: map[string]error{}},
		cache:     newFakeCache(),
		storage:   &fakeStorage{},
		retrier:   &fakeRetrier{},
		clients: &fakeClients{clients: map[string]*models.Client{
			clientA: {ID: clientA, UserID: ownerID, Name: "Acme", LateProfileID: "profile-1"},
		}},
		projects: &fakeProjects{
			projects: map[string]*models.Project{projectA: {ID: projectA, ClientID: clientA, Name: "Launch"}},
			owners:   map[string]int64{projectA: ownerID},
		},
	}
	f.posts = newFakePosts(f.moves)

	platforms := NewPlatformSet([]string{"instagram", "facebook", "linkedin"}, []string{"instagram", "facebook"})
	f.guard = NewOwnershipGuard(f.clients, f.projects)
	f.mover = NewPartitionMover(fakeTxRunner{}, f.posts, f.moves)
	f.mover.SetRetrier(f.retrier)
	f.scheduling = NewSchedulingService(f.posts, f.overrides, f.mover, f.guard, platforms)
	f.planner = NewPlannerService(f.posts, f.guard, platforms)
	f.calendar = NewCalendarService(f.posts, f.uploads, f.overrides, f.guard, f.cache, time.Second)
	f.approvals = NewApprovalService(f.posts)
	f.batch = NewBatchApprovalService(f.approvals, 4)
	f.publish = NewPublishService(f.posts, f.attempts, f.clients, f.guard, f.publisher, "UTC", 2)
	f.upload = NewUploadService(fakeTxRunner{}, f.uploads, f.posts, f.projects, f.guard, f.storage)
	return f
}

// seedScheduled stores a scheduled post of projectA directly.
func (f *fixture) seedScheduled(id, day, at, approval string, platforms ...string) *models.Post {
	d, err := ParseDay(day)
	if err != nil {
		panic(err)
	}
	project := projectA
	post := &models.Post{
		ID:             id,
		ProjectID:      &project,
		ClientID:       clientA,
		Caption:        "caption " + id,
		Status:         models.PostStatusScheduled,
		ScheduledDate:  &d,
		ScheduledTime:  &at,
		Platforms:      platforms,
		ApprovalStatus: approval,
	}
	if err := f.posts.CreateScheduled(context.Background(), nil, post); err != nil {
		panic(err)
	}
	return post
}

func (f *fixture) seedDraft(id, caption string, image *string) *models.Post {
	project := projectA
	post := &models.Post{
		ID:             id,
		ProjectID:      &project,
		ClientID:       clientA,
		Caption:        caption,
		ImageURL:       image,
		Status:         models.PostStatusReady,
		ApprovalStatus: models.ApprovalDraft,
	}
	if err := f.posts.CreateUnscheduled(context.Background(), nil, post); err != nil {
		panic(err)
	}
	return post
}
