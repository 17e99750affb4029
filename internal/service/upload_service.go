package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxUploadSize = 100 << 20

var allowedUploadTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {}, "mp4": {}, "mov": {},
}

type UploadInput struct {
	ProjectID *string
	Notes     string
	File      io.Reader
}

// UploadService stores raw client media and turns it into unscheduled posts.
type UploadService interface {
	Upload(ctx context.Context, clientID string, in UploadInput) (*models.Upload, error)
	List(ctx context.Context, clientID string) ([]*models.Upload, error)
	Convert(ctx context.Context, userID int64, uploadID, projectID string) (*models.Post, error)
}

type uploadService struct {
	txr      repository.TxRunner
	uploads  repository.UploadRepository
	posts    repository.PostRepository
	projects repository.ProjectRepository
	guard    OwnershipGuard
	storage  ObjectStorage
}

func NewUploadService(
	txr repository.TxRunner,
	uploads repository.UploadRepository,
	posts repository.PostRepository,
	projects repository.ProjectRepository,
	guard OwnershipGuard,
	storage ObjectStorage) UploadService {
	return &uploadService{
		txr:      txr,
		uploads:  uploads,
		posts:    posts,
		projects: projects,
		guard:    guard,
		storage:  storage,
	}
}

func (s *uploadService) Upload(ctx context.Context, clientID string, in UploadInput) (*models.Upload, error) {
	if in.File == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidRequest)
	}

	if in.ProjectID != nil && *in.ProjectID != "" {
		project, err := s.projects.GetByID(ctx, *in.ProjectID)
		if err != nil {
			return nil, storeErr("get project", err)
		}
		if project == nil || project.ClientID != clientID {
			return nil, ErrNotFound
		}
	} else {
		in.ProjectID = nil
	}

	body, err := io.ReadAll(io.LimitReader(in.File, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(body) == 0 || len(body) > maxUploadSize {
		return nil, fmt.Errorf("%w: file must be between 1 byte and 100 MB", ErrInvalidRequest)
	}

	kind, err := filetype.Match(body)
	if err != nil || kind == types.Unknown {
		return nil, ErrUnsupportedFile
	}
	if _, ok := allowedUploadTypes[kind.Extension]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, kind.Extension)
	}

	name, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generate object key: %w", err)
	}
	key := fmt.Sprintf("uploads/%s/%s.%s", clientID, name, kind.Extension)

	url, err := s.storage.Put(ctx, key, body, kind.MIME.Value)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	upload := &models.Upload{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		ProjectID: in.ProjectID,
		FileURL:   url,
		FileType:  kind.MIME.Value,
		FileSize:  int64(len(body)),
		Notes:     in.Notes,
		Status:    models.UploadStatusPending,
	}
	if err := s.uploads.Create(ctx, nil, upload); err != nil {
		return nil, storeErr("save upload", err)
	}

	slog.Info("client upload stored", "upload_id", upload.ID, "client_id", clientID, "type", upload.FileType)
	return upload, nil
}

func (s *uploadService) List(ctx context.Context, clientID string) ([]*models.Upload, error) {
	uploads, err := s.uploads.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, storeErr("list uploads", err)
	}
	return uploads, nil
}

// Convert creates an unscheduled post from an upload. The upload's media
// becomes the post image and its notes the client feedback.
func (s *uploadService) Convert(ctx context.Context, userID int64, uploadID, projectID string) (*models.Post, error) {
	project, err := s.guard.AuthorizeProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, storeErr("get upload", err)
	}
	if upload == nil || upload.ClientID != project.ClientID {
		return nil, ErrNotFound
	}
	if upload.PostID != nil {
		return nil, fmt.Errorf("%w: upload already converted", ErrInvalidTransition)
	}

	post := &models.Post{
		ID:             uuid.NewString(),
		ProjectID:      &project.ID,
		ClientID:       project.ClientID,
		ImageURL:       strPtr(upload.FileURL),
		Status:         models.PostStatusDraft,
		ApprovalStatus: models.ApprovalDraft,
	}
	if upload.Notes != "" {
		post.ClientFeedback = strPtr(upload.Notes)
	}

	err = s.txr.RunInTx(ctx, func(tx *sql.Tx) error {
		if err := s.posts.CreateUnscheduled(ctx, tx, post); err != nil {
			return err
		}
		return s.uploads.UpdateStatus(ctx, tx, upload.ID, models.UploadStatusCompleted, &post.ID)
	})
	if err != nil {
		return nil, storeErr("convert upload", err)
	}
	return post, nil
}
