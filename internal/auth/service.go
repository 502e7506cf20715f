package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/shared"
)

// Service wraps authentication business rules and user snapshot resolution.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if acc.IsDisabled {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return acc, nil
}

// ResolveUser loads the current authorization snapshot for the user. The
// result is consistent for one request; staleness across requests is bounded
// by session refetch, not handled here.
func (s *Service) ResolveUser(ctx context.Context, userID int64) (*access.User, error) {
	return s.repo.LoadUser(ctx, userID)
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
