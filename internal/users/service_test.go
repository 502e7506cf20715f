package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/users"
	_ "github.com/chainops/chainops/testing"
)

type fakeRepo struct {
	users         map[int64]users.User
	lastLocations []string
	lastTeamID    int64
	lastGroupID   *int64
	created       *users.User
	deleted       []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]users.User{
		10: {ID: 10, Username: "franchisee"},
	}}
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id int64) (users.User, error) {
	u, ok := f.users[id]
	if !ok {
		return users.User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) ListUsersByRole(ctx context.Context, roleName string) ([]users.User, error) {
	return f.ListUsers(ctx)
}

func (f *fakeRepo) UpdateLocations(ctx context.Context, userID int64, locationIDs []string) error {
	if _, ok := f.users[userID]; !ok {
		return httpx.ErrNotFound
	}
	f.lastLocations = locationIDs
	return nil
}

func (f *fakeRepo) UpdateTeam(ctx context.Context, userID, teamID int64) error {
	if _, ok := f.users[userID]; !ok {
		return httpx.ErrNotFound
	}
	f.lastTeamID = teamID
	return nil
}

func (f *fakeRepo) UpdateGroup(ctx context.Context, userID int64, groupID *int64) error {
	if _, ok := f.users[userID]; !ok {
		return httpx.ErrNotFound
	}
	f.lastGroupID = groupID
	return nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, username, email, passwordHash string, teamID int64, locationIDs []string) (users.User, error) {
	u := users.User{ID: 99, Username: username, Email: email, LocationIDs: locationIDs}
	f.created = &u
	return u, nil
}

func (f *fakeRepo) ListUsersByLocation(ctx context.Context, locationID string) ([]users.User, error) {
	var out []users.User
	for _, u := range f.users {
		for _, id := range u.LocationIDs {
			if id == locationID {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) SetDisabled(ctx context.Context, userID int64, disabled bool) error {
	u, ok := f.users[userID]
	if !ok {
		return httpx.ErrNotFound
	}
	u.IsDisabled = disabled
	f.users[userID] = u
	return nil
}

func (f *fakeRepo) DeleteUser(ctx context.Context, userID int64) error {
	if _, ok := f.users[userID]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.users, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeGroups struct {
	locations map[int64][]string
}

func (f *fakeGroups) GroupLocations(ctx context.Context, groupID int64) ([]string, error) {
	locs, ok := f.locations[groupID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return locs, nil
}

func adminActor() *access.User {
	return &access.User{ID: 1, Team: &access.Team{IsAdmin: true}}
}

func locationAdminActor(groupID int64) *access.User {
	actor := &access.User{
		ID: 2,
		Team: &access.Team{
			TeamRoles: []access.TeamRole{{Role: access.Role{Name: "LOCATION_ADMIN"}}},
		},
	}
	if groupID != 0 {
		actor.GroupID = &groupID
	}
	return actor
}

func regularActor() *access.User {
	return &access.User{ID: 3, Team: &access.Team{
		TeamRoles: []access.TeamRole{{Role: access.Role{Name: "REPORTING"}}},
	}}
}

func newService(repo *fakeRepo, groups *fakeGroups) *users.Service {
	if groups == nil {
		groups = &fakeGroups{}
	}
	return users.NewService(repo, groups, nil, nil)
}

func TestListIsAdminOnly(t *testing.T) {
	svc := newService(newFakeRepo(), nil)

	_, err := svc.List(context.Background(), regularActor())
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.List(context.Background(), nil)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	got, err := svc.List(context.Background(), adminActor())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUpdateLocationsAsAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil)

	err := svc.UpdateLocations(context.Background(), adminActor(), 10, []string{"4146", "9999"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4146", "9999"}, repo.lastLocations)
}

func TestUpdateLocationsLocationAdminWithinGroup(t *testing.T) {
	repo := newFakeRepo()
	groups := &fakeGroups{locations: map[int64][]string{5: {"4146", "4149", "7025"}}}
	svc := newService(repo, groups)

	err := svc.UpdateLocations(context.Background(), locationAdminActor(5), 10, []string{"4146", "7025"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4146", "7025"}, repo.lastLocations)
}

func TestUpdateLocationsLocationAdminOutsideGroup(t *testing.T) {
	repo := newFakeRepo()
	groups := &fakeGroups{locations: map[int64][]string{5: {"4146", "4149"}}}
	svc := newService(repo, groups)

	err := svc.UpdateLocations(context.Background(), locationAdminActor(5), 10, []string{"4146", "1825"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Nil(t, repo.lastLocations)
}

func TestUpdateLocationsLocationAdminWithoutGroup(t *testing.T) {
	svc := newService(newFakeRepo(), nil)

	err := svc.UpdateLocations(context.Background(), locationAdminActor(0), 10, []string{"4146"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateLocationsRegularUserDenied(t *testing.T) {
	svc := newService(newFakeRepo(), nil)

	err := svc.UpdateLocations(context.Background(), regularActor(), 10, []string{"4146"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestReassignTeamAdminOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil)

	err := svc.ReassignTeam(context.Background(), locationAdminActor(5), 10, 15)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.ReassignTeam(context.Background(), adminActor(), 10, 15))
	assert.Equal(t, int64(15), repo.lastTeamID)
}

func TestSetGroupAdminOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil)

	groupID := int64(4)
	err := svc.SetGroup(context.Background(), regularActor(), 10, &groupID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.SetGroup(context.Background(), adminActor(), 10, &groupID))
	require.NotNil(t, repo.lastGroupID)
	assert.Equal(t, int64(4), *repo.lastGroupID)

	// Clearing the group is allowed.
	require.NoError(t, svc.SetGroup(context.Background(), adminActor(), 10, nil))
	assert.Nil(t, repo.lastGroupID)
}

func TestCreateLocationUser(t *testing.T) {
	repo := newFakeRepo()
	groups := &fakeGroups{locations: map[int64][]string{5: {"4146", "4149"}}}
	svc := newService(repo, groups)

	input := users.NewLocationUser{
		Username:    "newstore",
		Email:       "store@test.local",
		Password:    "supersecret",
		TeamID:      19,
		LocationIDs: []string{"4146"},
	}

	created, err := svc.CreateLocationUser(context.Background(), locationAdminActor(5), input)
	require.NoError(t, err)
	assert.Equal(t, "newstore", created.Username)
	require.NotNil(t, repo.created)

	input.LocationIDs = []string{"1825"}
	_, err = svc.CreateLocationUser(context.Background(), locationAdminActor(5), input)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestListPriceUsers(t *testing.T) {
	svc := newService(newFakeRepo(), nil)

	priceAdmin := &access.User{ID: 4, Team: &access.Team{
		TeamRoles: []access.TeamRole{{Role: access.Role{Name: "PRICE_ADMIN"}}},
	}}
	_, err := svc.ListPriceUsers(context.Background(), priceAdmin)
	require.NoError(t, err)

	// Admin bypass applies to the capability check.
	_, err = svc.ListPriceUsers(context.Background(), adminActor())
	require.NoError(t, err)

	priceUser := &access.User{ID: 5, Team: &access.Team{
		TeamRoles: []access.TeamRole{{Role: access.Role{Name: "PRICE_USER"}}},
	}}
	_, err = svc.ListPriceUsers(context.Background(), priceUser)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDisableAndEnable(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil)

	err := svc.Disable(context.Background(), regularActor(), 10)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.False(t, repo.users[10].IsDisabled)

	require.NoError(t, svc.Disable(context.Background(), adminActor(), 10))
	assert.True(t, repo.users[10].IsDisabled)

	err = svc.Enable(context.Background(), regularActor(), 10)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.Enable(context.Background(), adminActor(), 10))
	assert.False(t, repo.users[10].IsDisabled)
}

func TestDisableOwnAccountRejected(t *testing.T) {
	repo := newFakeRepo()
	admin := adminActor()
	repo.users[admin.ID] = users.User{ID: admin.ID, Username: "admin"}
	svc := newService(repo, nil)

	err := svc.Disable(context.Background(), admin, admin.ID)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.False(t, repo.users[admin.ID].IsDisabled)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, nil)

	err := svc.Delete(context.Background(), locationAdminActor(5), 10)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), adminActor(), 10))
	assert.Equal(t, []int64{10}, repo.deleted)

	err = svc.Delete(context.Background(), adminActor(), 10)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteOwnAccountRejected(t *testing.T) {
	repo := newFakeRepo()
	admin := adminActor()
	repo.users[admin.ID] = users.User{ID: admin.ID, Username: "admin"}
	svc := newService(repo, nil)

	err := svc.Delete(context.Background(), admin, admin.ID)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, repo.deleted)
}

func TestListByLocation(t *testing.T) {
	repo := newFakeRepo()
	repo.users[11] = users.User{ID: 11, Username: "store4146", LocationIDs: []string{"4146"}}
	groups := &fakeGroups{locations: map[int64][]string{5: {"4146"}}}
	svc := newService(repo, groups)

	got, err := svc.ListByLocation(context.Background(), locationAdminActor(5), "4146")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "store4146", got[0].Username)

	_, err = svc.ListByLocation(context.Background(), locationAdminActor(5), "1825")
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.ListByLocation(context.Background(), regularActor(), "4146")
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	got, err = svc.ListByLocation(context.Background(), adminActor(), "4146")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNotFoundBubblesUp(t *testing.T) {
	svc := newService(newFakeRepo(), nil)

	err := svc.ReassignTeam(context.Background(), adminActor(), 404, 15)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}
