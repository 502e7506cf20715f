package groups

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
	ListGroups(ctx context.Context) ([]Group, error)
	GetGroup(ctx context.Context, id int64) (Group, error)
	CreateGroup(ctx context.Context, name string, locationIDs []string) (Group, error)
	ReplaceLocations(ctx context.Context, id int64, locationIDs []string) error
	DeleteGroup(ctx context.Context, id int64) error
}

// Service applies group visibility rules: admins see every group, a location
// admin sees only the group they are assigned to, everyone else sees none.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	logger *slog.Logger
}

func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, actor *access.User) ([]Group, error) {
	if actor.IsTrueAdmin() {
		return s.repo.ListGroups(ctx)
	}
	if actor != nil && access.IsLocationAdmin(actor.TeamRoles()) && actor.GroupID != nil && *actor.GroupID != 0 {
		g, err := s.repo.GetGroup(ctx, *actor.GroupID)
		if err != nil {
			return nil, err
		}
		return []Group{g}, nil
	}
	return nil, fmt.Errorf("%w: no group visibility", httpx.ErrForbidden)
}

func (s *Service) Get(ctx context.Context, actor *access.User, id int64) (Group, error) {
	if !actor.IsTrueAdmin() {
		if !access.IsLocationAdmin(actor.TeamRoles()) {
			return Group{}, fmt.Errorf("%w: no group visibility", httpx.ErrForbidden)
		}
		var groupID *int64
		if actor != nil {
			groupID = actor.GroupID
		}
		if !access.HasGroupAccess(groupID, id) {
			return Group{}, fmt.Errorf("%w: group %d is outside your assignment", httpx.ErrForbidden, id)
		}
	}
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *access.User, input NewGroup) (Group, error) {
	if !actor.IsTrueAdmin() {
		return Group{}, fmt.Errorf("%w: only admins create groups", httpx.ErrForbidden)
	}
	g, err := s.repo.CreateGroup(ctx, input.Name, input.LocationIDs)
	if err != nil {
		return Group{}, err
	}
	s.record(ctx, actor, "group.create", g.ID, map[string]any{"name": g.Name, "locations": len(g.LocationIDs)})
	return g, nil
}

// ReplaceLocations swaps the group's location set. Admin only: a location
// admin widening their own group would widen their own authority.
func (s *Service) ReplaceLocations(ctx context.Context, actor *access.User, id int64, locationIDs []string) (Group, error) {
	if !actor.IsTrueAdmin() {
		return Group{}, fmt.Errorf("%w: only admins edit group membership", httpx.ErrForbidden)
	}
	if err := s.repo.ReplaceLocations(ctx, id, locationIDs); err != nil {
		return Group{}, err
	}
	s.record(ctx, actor, "group.locations.replace", id, map[string]any{"locations": len(locationIDs)})
	return s.repo.GetGroup(ctx, id)
}

// Delete removes a group and detaches every member from it. Admin only.
func (s *Service) Delete(ctx context.Context, actor *access.User, id int64) error {
	if !actor.IsTrueAdmin() {
		return fmt.Errorf("%w: only admins delete groups", httpx.ErrForbidden)
	}
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "group.delete", id, nil)
	return nil
}

// GroupLocations returns the location set of a group without any actor
// check. The users service calls this while authorizing location changes.
func (s *Service) GroupLocations(ctx context.Context, groupID int64) ([]string, error) {
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return g.LocationIDs, nil
}

func (s *Service) record(ctx context.Context, actor *access.User, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "group",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
