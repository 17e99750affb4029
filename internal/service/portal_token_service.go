package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/pkg/utils"
)

const maxPortalTokens = 5

// PortalTokenService issues the opaque tokens embedded in client portal
// links and resolves them back to a client.
type PortalTokenService interface {
	Create(ctx context.Context, userID int64, clientID string) (*models.PortalToken, error)
	List(ctx context.Context, userID int64, clientID string) ([]*models.PortalToken, error)
	Remove(ctx context.Context, userID int64, clientID string, tokenID int64) error
	ResolveClient(ctx context.Context, token string) (string, error)
}

type portalTokenService struct {
	tr    repository.PortalTokenRepository
	guard OwnershipGuard
}

func NewPortalTokenService(tr repository.PortalTokenRepository, guard OwnershipGuard) PortalTokenService {
	return &portalTokenService{tr: tr, guard: guard}
}

func (s *portalTokenService) Create(ctx context.Context, userID int64, clientID string) (*models.PortalToken, error) {
	if _, err := s.guard.AuthorizeClient(ctx, userID, clientID); err != nil {
		return nil, err
	}

	tokens, err := s.tr.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, storeErr("list portal tokens", err)
	}
	if len(tokens) >= maxPortalTokens {
		slog.Info("portal token limit reached", "client_id", clientID)
		return nil, ErrTokenLimit
	}

	key, err := utils.GenerateRandomKey(24)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generate portal token: %w", err)
	}

	token := &models.PortalToken{ClientID: clientID, Token: key}
	id, err := s.tr.Create(ctx, token)
	if err != nil {
		return nil, storeErr("save portal token", err)
	}
	token.ID = id
	return token, nil
}

func (s *portalTokenService) List(ctx context.Context, userID int64, clientID string) ([]*models.PortalToken, error) {
	if _, err := s.guard.AuthorizeClient(ctx, userID, clientID); err != nil {
		return nil, err
	}

	tokens, err := s.tr.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, storeErr("list portal tokens", err)
	}
	return tokens, nil
}

func (s *portalTokenService) Remove(ctx context.Context, userID int64, clientID string, tokenID int64) error {
	if _, err := s.guard.AuthorizeClient(ctx, userID, clientID); err != nil {
		return err
	}
	if tokenID == 0 {
		return fmt.Errorf("%w: token id is required", ErrInvalidRequest)
	}

	ok, err := s.tr.CheckByClientID(ctx, tokenID, clientID)
	if err != nil {
		return storeErr("check portal token", err)
	}
	if !ok {
		return ErrNotFound
	}

	if err := s.tr.Remove(ctx, tokenID); err != nil {
		return storeErr("remove portal token", err)
	}
	return nil
}

func (s *portalTokenService) ResolveClient(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthorized
	}

	clientID, ok, err := s.tr.GetClientID(ctx, token)
	if err != nil {
		return "", storeErr("resolve portal token", err)
	}
	if !ok {
		return "", ErrUnauthorized
	}
	return clientID, nil
}
