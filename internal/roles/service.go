package roles

import (
	"context"
	"fmt"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
)

type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]access.Role, error)
	GetRoleByName(ctx context.Context, name string) (access.Role, error)
}

// Service exposes the role catalogue to administrators. Team admins need the
// list to build role assignments; nobody edits it at runtime.
type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, actor *access.User) ([]access.Role, error) {
	if !actor.IsTrueAdmin() {
		return nil, fmt.Errorf("%w: role catalogue is admin only", httpx.ErrForbidden)
	}
	return s.repo.ListRoles(ctx)
}

func (s *Service) GetByName(ctx context.Context, actor *access.User, name string) (access.Role, error) {
	if !actor.IsTrueAdmin() {
		return access.Role{}, fmt.Errorf("%w: role catalogue is admin only", httpx.ErrForbidden)
	}
	return s.repo.GetRoleByName(ctx, name)
}
