package groups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/groups"
	"github.com/chainops/chainops/internal/platform/httpx"
)

type fakeRepo struct {
	groups map[int64]groups.Group
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		groups: map[int64]groups.Group{
			5: {ID: 5, Name: "Northeast", LocationIDs: []string{"4146", "4149"}},
			6: {ID: 6, Name: "Southwest", LocationIDs: []string{"1825"}},
		},
		nextID: 7,
	}
}

func (f *fakeRepo) ListGroups(ctx context.Context) ([]groups.Group, error) {
	out := make([]groups.Group, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeRepo) GetGroup(ctx context.Context, id int64) (groups.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return groups.Group{}, httpx.ErrNotFound
	}
	return g, nil
}

func (f *fakeRepo) CreateGroup(ctx context.Context, name string, locationIDs []string) (groups.Group, error) {
	g := groups.Group{ID: f.nextID, Name: name, LocationIDs: locationIDs}
	f.groups[g.ID] = g
	f.nextID++
	return g, nil
}

func (f *fakeRepo) ReplaceLocations(ctx context.Context, id int64, locationIDs []string) error {
	g, ok := f.groups[id]
	if !ok {
		return httpx.ErrNotFound
	}
	g.LocationIDs = locationIDs
	f.groups[id] = g
	return nil
}

func (f *fakeRepo) DeleteGroup(ctx context.Context, id int64) error {
	if _, ok := f.groups[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.groups, id)
	return nil
}

func admin() *access.User {
	return &access.User{ID: 1, Team: &access.Team{IsAdmin: true}}
}

func locationAdmin(groupID int64) *access.User {
	u := &access.User{ID: 2, Team: &access.Team{
		TeamRoles: []access.TeamRole{{Role: access.Role{Name: "LOCATION_ADMIN"}}},
	}}
	if groupID != 0 {
		u.GroupID = &groupID
	}
	return u
}

func TestListVisibility(t *testing.T) {
	svc := groups.NewService(newFakeRepo(), nil, nil)

	all, err := svc.List(context.Background(), admin())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(context.Background(), locationAdmin(5))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Northeast", own[0].Name)

	_, err = svc.List(context.Background(), locationAdmin(0))
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	viewer := &access.User{ID: 3, Team: &access.Team{
		TeamRoles: []access.TeamRole{{Role: access.Role{Name: "DATA"}}},
	}}
	_, err = svc.List(context.Background(), viewer)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGetScopedToAssignment(t *testing.T) {
	svc := groups.NewService(newFakeRepo(), nil, nil)

	g, err := svc.Get(context.Background(), locationAdmin(5), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"4146", "4149"}, g.LocationIDs)

	_, err = svc.Get(context.Background(), locationAdmin(5), 6)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	// Admins read any group.
	_, err = svc.Get(context.Background(), admin(), 6)
	require.NoError(t, err)
}

func TestCreateAndReplaceAreAdminOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := groups.NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), locationAdmin(5), groups.NewGroup{Name: "Midwest"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	created, err := svc.Create(context.Background(), admin(), groups.NewGroup{
		Name:        "Midwest",
		LocationIDs: []string{"7025"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"7025"}, created.LocationIDs)

	_, err = svc.ReplaceLocations(context.Background(), locationAdmin(5), 5, []string{"4146", "9999"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	updated, err := svc.ReplaceLocations(context.Background(), admin(), 5, []string{"4146", "9999"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4146", "9999"}, updated.LocationIDs)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := groups.NewService(repo, nil, nil)

	err := svc.Delete(context.Background(), locationAdmin(5), 5)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Contains(t, repo.groups, int64(5))

	require.NoError(t, svc.Delete(context.Background(), admin(), 5))
	assert.NotContains(t, repo.groups, int64(5))

	err = svc.Delete(context.Background(), admin(), 5)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGroupLocations(t *testing.T) {
	svc := groups.NewService(newFakeRepo(), nil, nil)

	locs, err := svc.GroupLocations(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"4146", "4149"}, locs)

	_, err = svc.GroupLocations(context.Background(), 404)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
