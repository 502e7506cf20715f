package users

import (
	"context"
	"fmt"
	"strconv"

	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsersByRole(ctx context.Context, roleName string) ([]User, error)
	UpdateLocations(ctx context.Context, userID int64, locationIDs []string) error
	UpdateTeam(ctx context.Context, userID, teamID int64) error
	UpdateGroup(ctx context.Context, userID int64, groupID *int64) error
	CreateUser(ctx context.Context, username, email, passwordHash string, teamID int64, locationIDs []string) (User, error)
	ListUsersByLocation(ctx context.Context, locationID string) ([]User, error)
	SetDisabled(ctx context.Context, userID int64, disabled bool) error
	DeleteUser(ctx context.Context, userID int64) error
}

// GroupDirectory resolves a group's location set for containment checks.
type GroupDirectory interface {
	GroupLocations(ctx context.Context, groupID int64) ([]string, error)
}

// Service enforces user management rules. Location admins may only act
// inside their own group's locations; everything else is admin-only.
type Service struct {
	repo   RepositoryPort
	groups GroupDirectory
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, groups GroupDirectory, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, groups: groups, audit: audit, logger: logger}
}

// List returns all users. Admin only.
func (s *Service) List(ctx context.Context, actor *access.User) ([]User, error) {
	if !actor.IsTrueAdmin() {
		return nil, fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	return s.repo.ListUsers(ctx)
}

// Get returns one user. Admin only.
func (s *Service) Get(ctx context.Context, actor *access.User, id int64) (User, error) {
	if !actor.IsTrueAdmin() {
		return User{}, fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	return s.repo.GetUser(ctx, id)
}

// ListPriceUsers returns users on teams carrying PRICE_USER. Admins and
// price admins only.
func (s *Service) ListPriceUsers(ctx context.Context, actor *access.User) ([]User, error) {
	if !access.IsPriceAdmin(actor.TeamRoles()) {
		return nil, fmt.Errorf("%w: price admin required", httpx.ErrForbidden)
	}
	return s.repo.ListUsersByRole(ctx, access.RolePriceUser)
}

// UpdateLocations replaces a user's assigned locations. Admins may assign
// anything; location admins only locations inside their own group.
func (s *Service) UpdateLocations(ctx context.Context, actor *access.User, targetID int64, locationIDs []string) error {
	if err := s.authorizeLocationChange(ctx, actor, locationIDs); err != nil {
		return err
	}
	if err := s.repo.UpdateLocations(ctx, targetID, locationIDs); err != nil {
		return err
	}
	s.record(ctx, actor, "user.locations.update", targetID, map[string]any{"count": len(locationIDs)})
	return nil
}

// ReassignTeam moves a user to another team. Admin only.
func (s *Service) ReassignTeam(ctx context.Context, actor *access.User, targetID, teamID int64) error {
	if !actor.IsTrueAdmin() {
		return fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	if err := s.repo.UpdateTeam(ctx, targetID, teamID); err != nil {
		return err
	}
	s.record(ctx, actor, "user.team.update", targetID, map[string]any{"team_id": teamID})
	return nil
}

// SetGroup sets or clears a user's group. Admin only.
func (s *Service) SetGroup(ctx context.Context, actor *access.User, targetID int64, groupID *int64) error {
	if !actor.IsTrueAdmin() {
		return fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	if err := s.repo.UpdateGroup(ctx, targetID, groupID); err != nil {
		return err
	}
	s.record(ctx, actor, "user.group.update", targetID, map[string]any{"group_id": groupID})
	return nil
}

// CreateLocationUser provisions a location-scoped user. Admins and location
// admins (within their group) only.
func (s *Service) CreateLocationUser(ctx context.Context, actor *access.User, input NewLocationUser) (User, error) {
	if err := s.authorizeLocationChange(ctx, actor, input.LocationIDs); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.CreateUser(ctx, input.Username, input.Email, string(hash), input.TeamID, input.LocationIDs)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, "user.create", user.ID, map[string]any{"team_id": input.TeamID, "locations": len(input.LocationIDs)})
	return user, nil
}

// Disable locks the account out of future logins. Admin only. An admin
// cannot disable their own account.
func (s *Service) Disable(ctx context.Context, actor *access.User, targetID int64) error {
	if !actor.IsTrueAdmin() {
		return fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot disable your own account", httpx.ErrValidation)
	}
	if err := s.repo.SetDisabled(ctx, targetID, true); err != nil {
		return err
	}
	s.record(ctx, actor, "user.disable", targetID, nil)
	return nil
}

// Enable reactivates a disabled account. Admin only.
func (s *Service) Enable(ctx context.Context, actor *access.User, targetID int64) error {
	if !actor.IsTrueAdmin() {
		return fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	if err := s.repo.SetDisabled(ctx, targetID, false); err != nil {
		return err
	}
	s.record(ctx, actor, "user.enable", targetID, nil)
	return nil
}

// Delete removes an account permanently. Admin only, never self.
func (s *Service) Delete(ctx context.Context, actor *access.User, targetID int64) error {
	if !actor.IsTrueAdmin() {
		return fmt.Errorf("%w: admin required", httpx.ErrForbidden)
	}
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot delete your own account", httpx.ErrValidation)
	}
	if err := s.repo.DeleteUser(ctx, targetID); err != nil {
		return err
	}
	s.record(ctx, actor, "user.delete", targetID, nil)
	return nil
}

// ListByLocation returns the users assigned to one location. Admins see any
// location; location admins only locations inside their own group.
func (s *Service) ListByLocation(ctx context.Context, actor *access.User, locationID string) ([]User, error) {
	if err := s.authorizeLocationChange(ctx, actor, []string{locationID}); err != nil {
		return nil, err
	}
	return s.repo.ListUsersByLocation(ctx, locationID)
}

// authorizeLocationChange implements the location containment rule: admins
// pass, location admins need a group that contains every requested location.
func (s *Service) authorizeLocationChange(ctx context.Context, actor *access.User, locationIDs []string) error {
	if actor.IsTrueAdmin() {
		return nil
	}
	if !access.IsLocationAdmin(actor.TeamRoles()) {
		return fmt.Errorf("%w: requires ADMIN or LOCATION_ADMIN role", httpx.ErrForbidden)
	}
	if actor.GroupID == nil || *actor.GroupID == 0 {
		return fmt.Errorf("%w: no group assigned", httpx.ErrForbidden)
	}
	groupLocations, err := s.groups.GroupLocations(ctx, *actor.GroupID)
	if err != nil {
		return err
	}
	for _, id := range locationIDs {
		if !access.HasLocationAccess(groupLocations, id) {
			return fmt.Errorf("%w: location %s is not in your group", httpx.ErrForbidden, id)
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor *access.User, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
