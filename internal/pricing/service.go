package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/shared"
)

type RepositoryPort interface {
	ListByLocation(ctx context.Context, locationID string) ([]Mapping, error)
	GetMapping(ctx context.Context, id int64) (Mapping, error)
	UpsertMapping(ctx context.Context, input NewMapping) (Mapping, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (Mapping, error)
}

// Service enforces the price portal rules. Admins and price admins manage
// every location; price users and location admins work only at locations
// they are assigned to.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	logger *slog.Logger
}

func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) ListForLocation(ctx context.Context, actor *access.User, locationID string) ([]Mapping, error) {
	if err := s.authorizeLocation(actor, locationID); err != nil {
		return nil, err
	}
	return s.repo.ListByLocation(ctx, locationID)
}

// Upsert creates or refreshes a mapping. Reserved for price admins: the
// mapping defines WHAT is priced, not what it costs.
func (s *Service) Upsert(ctx context.Context, actor *access.User, input NewMapping) (Mapping, error) {
	if !access.IsPriceAdmin(actor.TeamRoles()) {
		return Mapping{}, fmt.Errorf("%w: only price admins manage mappings", httpx.ErrForbidden)
	}
	if !input.Price.IsPositive() {
		return Mapping{}, fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
	}
	m, err := s.repo.UpsertMapping(ctx, input)
	if err != nil {
		return Mapping{}, err
	}
	s.record(ctx, actor, "price.mapping.upsert", m.ID, map[string]any{
		"location": m.LocationID, "item": m.ItemCode, "price": m.Price.String(),
	})
	return m, nil
}

// SetPrice changes the price on an existing mapping. Price users may only
// touch mappings at their own locations; the price-user check is an exact
// role match, admin teams do not inherit it.
func (s *Service) SetPrice(ctx context.Context, actor *access.User, id int64, price decimal.Decimal) (Mapping, error) {
	if actor == nil {
		return Mapping{}, fmt.Errorf("%w: sign in required", httpx.ErrUnauthorized)
	}
	if !price.IsPositive() {
		return Mapping{}, fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
	}
	current, err := s.repo.GetMapping(ctx, id)
	if err != nil {
		return Mapping{}, err
	}
	switch {
	case actor.IsTrueAdmin() || access.IsPriceAdmin(actor.TeamRoles()):
	case access.IsPriceUser(actor.TeamRoles()) && access.HasLocationAccess(actor.LocationIDs, current.LocationID):
	default:
		return Mapping{}, fmt.Errorf("%w: location %s is outside your assignment", httpx.ErrForbidden, current.LocationID)
	}
	m, err := s.repo.UpdatePrice(ctx, id, price)
	if err != nil {
		return Mapping{}, err
	}
	s.record(ctx, actor, "price.set", m.ID, map[string]any{
		"location": m.LocationID, "item": m.ItemCode,
		"from": current.Price.String(), "to": m.Price.String(),
	})
	return m, nil
}

func (s *Service) authorizeLocation(actor *access.User, locationID string) error {
	if actor == nil {
		return fmt.Errorf("%w: sign in required", httpx.ErrUnauthorized)
	}
	if actor.IsTrueAdmin() || access.IsPriceAdmin(actor.TeamRoles()) {
		return nil
	}
	if access.HasLocationAccess(actor.LocationIDs, locationID) {
		return nil
	}
	return fmt.Errorf("%w: location %s is outside your assignment", httpx.ErrForbidden, locationID)
}

func (s *Service) record(ctx context.Context, actor *access.User, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "price_mapping",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
