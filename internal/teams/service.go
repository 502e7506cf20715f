package teams

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/shared"
)

type RepositoryPort interface {
	ListTeams(ctx context.Context) ([]access.Team, error)
	GetTeam(ctx context.Context, id int64) (access.Team, error)
	CreateTeam(ctx context.Context, teamName string, isAdmin bool, roleNames []string) (int64, error)
	ReplaceRoles(ctx context.Context, teamID int64, roleNames []string) error
}

// Service guards team management. Every operation here is admin only: teams
// define who can do what, so only true admins may touch them.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	logger *slog.Logger
}

func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, actor *access.User) ([]access.Team, error) {
	if !actor.IsTrueAdmin() {
		return nil, fmt.Errorf("%w: team directory is admin only", httpx.ErrForbidden)
	}
	return s.repo.ListTeams(ctx)
}

func (s *Service) Get(ctx context.Context, actor *access.User, id int64) (access.Team, error) {
	if !actor.IsTrueAdmin() {
		return access.Team{}, fmt.Errorf("%w: team directory is admin only", httpx.ErrForbidden)
	}
	return s.repo.GetTeam(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *access.User, input NewTeam) (access.Team, error) {
	if !actor.IsTrueAdmin() {
		return access.Team{}, fmt.Errorf("%w: only admins create teams", httpx.ErrForbidden)
	}
	id, err := s.repo.CreateTeam(ctx, input.TeamName, input.IsAdmin, input.Roles)
	if err != nil {
		return access.Team{}, err
	}
	s.record(ctx, actor, "team.create", id, map[string]any{"teamName": input.TeamName, "roles": input.Roles})
	return s.repo.GetTeam(ctx, id)
}

// ReplaceRoles swaps the team's whole role set. Partial edits are not
// offered; the admin UI always submits the complete desired set.
func (s *Service) ReplaceRoles(ctx context.Context, actor *access.User, teamID int64, roleNames []string) (access.Team, error) {
	if !actor.IsTrueAdmin() {
		return access.Team{}, fmt.Errorf("%w: only admins assign roles", httpx.ErrForbidden)
	}
	if err := s.repo.ReplaceRoles(ctx, teamID, roleNames); err != nil {
		return access.Team{}, err
	}
	s.record(ctx, actor, "team.roles.replace", teamID, map[string]any{"roles": roleNames})
	return s.repo.GetTeam(ctx, teamID)
}

func (s *Service) record(ctx context.Context, actor *access.User, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "team",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
