package access_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainops/chainops/internal/access"
)

func guardStatus(t *testing.T, guard func(http.Handler) http.Handler, user *access.User) int {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if user != nil {
		req = req.WithContext(access.ContextWithUser(req.Context(), user))
	}
	res := httptest.NewRecorder()
	guard(next).ServeHTTP(res, req)
	return res.Code
}

func TestRequireAdmin(t *testing.T) {
	mw := access.Middleware{}

	assert.Equal(t, http.StatusForbidden, guardStatus(t, mw.RequireAdmin(), nil))
	assert.Equal(t, http.StatusForbidden, guardStatus(t, mw.RequireAdmin(), &access.User{}))

	regular := &access.User{Team: &access.Team{TeamRoles: teamRoles("DATA")}}
	assert.Equal(t, http.StatusForbidden, guardStatus(t, mw.RequireAdmin(), regular))

	legacy := &access.User{Team: &access.Team{IsAdmin: true}}
	assert.Equal(t, http.StatusNoContent, guardStatus(t, mw.RequireAdmin(), legacy))

	roleAdmin := &access.User{Team: &access.Team{TeamRoles: teamRoles("ADMIN")}}
	assert.Equal(t, http.StatusNoContent, guardStatus(t, mw.RequireAdmin(), roleAdmin))
}

func TestRequireRole(t *testing.T) {
	mw := access.Middleware{}
	guard := mw.RequireRole(access.RoleReporting)

	assert.Equal(t, http.StatusForbidden, guardStatus(t, guard, nil))

	reporter := &access.User{Team: &access.Team{TeamRoles: teamRoles("REPORTING")}}
	assert.Equal(t, http.StatusNoContent, guardStatus(t, guard, reporter))

	admin := &access.User{Team: &access.Team{TeamRoles: teamRoles("ADMIN")}}
	assert.Equal(t, http.StatusNoContent, guardStatus(t, guard, admin))

	scanner := &access.User{Team: &access.Team{TeamRoles: teamRoles("SCANS")}}
	assert.Equal(t, http.StatusForbidden, guardStatus(t, guard, scanner))
}

func TestRequireAnyRole(t *testing.T) {
	mw := access.Middleware{}
	guard := mw.RequireAnyRole(access.RolePriceAdmin, access.RolePriceUser)

	priceUser := &access.User{Team: &access.Team{TeamRoles: teamRoles("PRICE_USER")}}
	assert.Equal(t, http.StatusNoContent, guardStatus(t, guard, priceUser))

	data := &access.User{Team: &access.Team{TeamRoles: teamRoles("DATA")}}
	assert.Equal(t, http.StatusForbidden, guardStatus(t, guard, data))
}

func TestRequireLocationAdmin(t *testing.T) {
	mw := access.Middleware{}
	guard := mw.RequireLocationAdmin()

	locationAdmin := &access.User{Team: &access.Team{TeamRoles: teamRoles("LOCATION_ADMIN")}}
	assert.Equal(t, http.StatusNoContent, guardStatus(t, guard, locationAdmin))

	locationUser := &access.User{Team: &access.Team{TeamRoles: teamRoles("LOCATION_USER")}}
	assert.Equal(t, http.StatusForbidden, guardStatus(t, guard, locationUser))
}
