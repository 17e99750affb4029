package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/maheshrc27/contentflow/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	BatchSucceeded = "succeeded"
	BatchPartial   = "partial"
	BatchFailed    = "failed"
)

// ApprovalSession holds the decisions a client has staged but not yet
// submitted. It is safe for concurrent use.
type ApprovalSession struct {
	mu    sync.Mutex
	items map[models.PostKey]Review
}

func NewApprovalSession() *ApprovalSession {
	return &ApprovalSession{items: make(map[models.PostKey]Review)}
}

// Stage records or replaces the review for key.
func (s *ApprovalSession) Stage(key models.PostKey, r Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = r
}

func (s *ApprovalSession) Get(key models.PostKey) (Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[key]
	return r, ok
}

func (s *ApprovalSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Keys returns the staged keys in key order.
func (s *ApprovalSession) Keys() []models.PostKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]models.PostKey, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Clear drops only the given keys. Entries staged for other posts survive.
func (s *ApprovalSession) Clear(keys []models.PostKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
}

func (s *ApprovalSession) snapshot() map[models.PostKey]Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.PostKey]Review, len(s.items))
	for k, v := range s.items {
		out[k] = v
	}
	return out
}

type ItemFailure struct {
	Key    models.PostKey `json:"key"`
	Code   string         `json:"code"`
	Reason string         `json:"reason"`
}

type BatchResult struct {
	Status         string           `json:"status"`
	Succeeded      []models.PostKey `json:"succeeded"`
	Failed         []ItemFailure    `json:"failed"`
	SucceededCount int              `json:"succeeded_count"`
	FailedCount    int              `json:"failed_count"`
}

type BatchApprovalService interface {
	SubmitBatch(ctx context.Context, clientID string, session *ApprovalSession) (*BatchResult, error)
}

type batchApprovalService struct {
	approvals   ApprovalService
	concurrency int
}

func NewBatchApprovalService(approvals ApprovalService, concurrency int) BatchApprovalService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &batchApprovalService{approvals: approvals, concurrency: concurrency}
}

// SubmitBatch applies every staged review independently and concurrently.
// Item failures are reported per key and never fail the call. Successful
// keys are cleared from the session.
func (s *batchApprovalService) SubmitBatch(ctx context.Context, clientID string, session *ApprovalSession) (*BatchResult, error) {
	if session == nil || session.Len() == 0 {
		return nil, ErrEmptyBatch
	}
	items := session.snapshot()

	var (
		mu     sync.Mutex
		result = &BatchResult{Succeeded: []models.PostKey{}, Failed: []ItemFailure{}}
		g      errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for key, review := range items {
		key, review := key, review
		g.Go(func() error {
			_, err := s.approvals.Review(ctx, clientID, key, review)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Info("batch item failed", "key", key.String(), "error", err)
				result.Failed = append(result.Failed, ItemFailure{Key: key, Code: Classify(err).Code, Reason: err.Error()})
				return nil
			}
			result.Succeeded = append(result.Succeeded, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.finalize()
	session.Clear(result.Succeeded)
	return result, nil
}

// AddFailures records items that were rejected before reaching the engine,
// such as malformed keys.
func (r *BatchResult) AddFailures(failures ...ItemFailure) {
	r.Failed = append(r.Failed, failures...)
	r.finalize()
}

func (r *BatchResult) finalize() {
	if r.Succeeded == nil {
		r.Succeeded = []models.PostKey{}
	}
	if r.Failed == nil {
		r.Failed = []ItemFailure{}
	}
	sortKeys(r.Succeeded)
	sort.SliceStable(r.Failed, func(i, j int) bool {
		return r.Failed[i].Key.String() < r.Failed[j].Key.String()
	})
	r.SucceededCount = len(r.Succeeded)
	r.FailedCount = len(r.Failed)

	switch {
	case r.FailedCount == 0:
		r.Status = BatchSucceeded
	case r.SucceededCount == 0:
		r.Status = BatchFailed
	default:
		r.Status = BatchPartial
	}
}

func sortKeys(keys []models.PostKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
}
