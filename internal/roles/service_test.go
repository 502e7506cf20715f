package roles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/roles"
)

type fakeRepo struct {
	catalogue []access.Role
}

func (f *fakeRepo) ListRoles(ctx context.Context) ([]access.Role, error) {
	return f.catalogue, nil
}

func (f *fakeRepo) GetRoleByName(ctx context.Context, name string) (access.Role, error) {
	for _, r := range f.catalogue {
		if r.Name == name {
			return r, nil
		}
	}
	return access.Role{}, httpx.ErrNotFound
}

func TestCatalogueIsAdminOnly(t *testing.T) {
	svc := roles.NewService(&fakeRepo{catalogue: []access.Role{{ID: 1, Name: "ADMIN"}}})

	admin := &access.User{Team: &access.Team{IsAdmin: true}}
	list, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	viewer := &access.User{Team: &access.Team{
		TeamRoles: []access.TeamRole{{Role: access.Role{Name: "REPORTING"}}},
	}}
	_, err = svc.List(context.Background(), viewer)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.List(context.Background(), nil)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGetByName(t *testing.T) {
	svc := roles.NewService(&fakeRepo{catalogue: []access.Role{{ID: 2, Name: "PRICE_ADMIN"}}})
	admin := &access.User{Team: &access.Team{IsAdmin: true}}

	role, err := svc.GetByName(context.Background(), admin, "PRICE_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, int64(2), role.ID)

	_, err = svc.GetByName(context.Background(), admin, "NOPE")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
