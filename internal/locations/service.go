package locations

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
)

type RepositoryPort interface {
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id string) (Location, error)
	UpsertLocation(ctx context.Context, loc Location) error
	DeactivateMissing(ctx context.Context, keepIDs []string) (int64, error)
}

// Service reads the directory through the versioned cache. Cache misses are
// collapsed with singleflight so a cold key triggers one database load no
// matter how many requests race on it.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
}

func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns the locations visible to the actor: admins see the whole
// directory, everyone else sees only their assigned locations.
func (s *Service) List(ctx context.Context, actor *access.User) ([]Location, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: sign in required", httpx.ErrUnauthorized)
	}
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsTrueAdmin() {
		return all, nil
	}
	var visible []Location
	for _, loc := range all {
		if access.HasLocationAccess(actor.LocationIDs, loc.ID) {
			visible = append(visible, loc)
		}
	}
	return visible, nil
}

// Get returns one location. Non-admins may only read locations they are
// assigned to; everything else answers not-found to avoid leaking the
// directory's shape.
func (s *Service) Get(ctx context.Context, actor *access.User, id string) (Location, error) {
	if actor == nil {
		return Location{}, fmt.Errorf("%w: sign in required", httpx.ErrUnauthorized)
	}
	if !actor.IsTrueAdmin() && !access.HasLocationAccess(actor.LocationIDs, id) {
		return Location{}, httpx.ErrNotFound
	}
	return s.repo.GetLocation(ctx, id)
}

// Register adds or refreshes a location. Admin only.
func (s *Service) Register(ctx context.Context, actor *access.User, input NewLocation) (Location, error) {
	if !actor.IsTrueAdmin() {
		return Location{}, fmt.Errorf("%w: only admins edit the directory", httpx.ErrForbidden)
	}
	loc := Location{ID: input.ID, Name: input.Name, Address: input.Address, Active: true}
	if err := s.repo.UpsertLocation(ctx, loc); err != nil {
		return Location{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// SyncDirectory replays a full upstream feed: upsert everything present,
// deactivate whatever disappeared, then invalidate cached views. Admin only.
// Returns the number of locations deactivated.
func (s *Service) SyncDirectory(ctx context.Context, actor *access.User, feed []Location) (int64, error) {
	if !actor.IsTrueAdmin() {
		return 0, fmt.Errorf("%w: only admins replay the directory feed", httpx.ErrForbidden)
	}
	keep := make([]string, 0, len(feed))
	for _, loc := range feed {
		loc.Active = true
		if err := s.repo.UpsertLocation(ctx, loc); err != nil {
			return 0, err
		}
		keep = append(keep, loc.ID)
	}
	gone, err := s.repo.DeactivateMissing(ctx, keep)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		return gone, err
	}
	return gone, nil
}

// RefreshCache discards cached directory views and rebuilds the primary one.
// The background worker calls this after location syncs.
func (s *Service) RefreshCache(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return err
	}
	_, err := s.listAll(ctx)
	return err
}

func (s *Service) listAll(ctx context.Context) ([]Location, error) {
	key, err := s.cache.BuildKey(ctx, "locations", "all")
	if err != nil {
		return nil, err
	}
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var cached []Location
		err := s.cache.FetchJSON(ctx, key, &cached, func(ctx context.Context) (interface{}, error) {
			locs, err := s.repo.ListLocations(ctx)
			if err != nil {
				return nil, err
			}
			sortByName(locs)
			return locs, nil
		})
		if err != nil {
			return nil, err
		}
		return cached, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Location), nil
}

// sortByName orders locations by display name using a case-insensitive
// collation, with the store number as a tie breaker.
func sortByName(locs []Location) {
	coll := collate.New(language.English, collate.IgnoreCase)
	coll.Sort(byName(locs))
}

type byName []Location

func (b byName) Len() int      { return len(b) }
func (b byName) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byName) Bytes(i int) []byte {
	return []byte(b[i].Name + "\x00" + b[i].ID)
}
