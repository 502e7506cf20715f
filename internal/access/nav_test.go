package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainops/chainops/internal/access"
)

func adminContext() access.Context {
	return access.NewContext(&access.Team{IsAdmin: true, TeamRoles: teamRoles("ADMIN")}, nil)
}

func navIDs(items []access.NavItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestAccessibleItemsAdminSeesEverything(t *testing.T) {
	items := access.AccessibleItems(adminContext())
	assert.Len(t, items, len(access.Items()))
}

func TestAccessibleItemsEmptyContext(t *testing.T) {
	items := access.AccessibleItems(access.Context{})
	// Only the unconditional entries survive a fully empty context.
	assert.Equal(t, []string{"home", "teams"}, navIDs(items))
}

func TestAccessibleItemsByCategory(t *testing.T) {
	ctx := access.NewContext(&access.Team{TeamRoles: teamRoles("DATA")}, nil)
	reports := access.AccessibleItems(ctx, access.CategoryReports)
	assert.Equal(t, []string{"rewards-transactions"}, navIDs(reports))

	main := access.AccessibleItems(ctx, access.CategoryMain)
	assert.Equal(t, []string{"home", "teams"}, navIDs(main))

	admin := access.AccessibleItems(ctx, access.CategoryAdmin)
	assert.Empty(t, admin)
}

func TestAccessibleItemsRoleUnion(t *testing.T) {
	// price-portal is a union of LOCATION_ADMIN, ADMIN and PRICE_ADMIN.
	for _, role := range []string{"LOCATION_ADMIN", "ADMIN", "PRICE_ADMIN"} {
		ctx := access.NewContext(&access.Team{TeamRoles: teamRoles(role)}, nil)
		assert.True(t, access.CanAccessItem(ctx, "price-portal"), "role %s", role)
	}
	ctx := access.NewContext(&access.Team{TeamRoles: teamRoles("PRICE_USER")}, nil)
	assert.False(t, access.CanAccessItem(ctx, "price-portal"))
}

func TestGroupsItemNeedsGroupForLocationAdmin(t *testing.T) {
	team := &access.Team{TeamRoles: teamRoles("LOCATION_ADMIN")}

	withoutGroup := access.NewContext(team, nil)
	assert.False(t, access.CanAccessItem(withoutGroup, "groups"))

	zeroGroup := access.NewContext(team, int64ptr(0))
	assert.False(t, access.CanAccessItem(zeroGroup, "groups"))

	withGroup := access.NewContext(team, int64ptr(42))
	assert.True(t, access.CanAccessItem(withGroup, "groups"))

	// Admins see groups regardless of group assignment.
	assert.True(t, access.CanAccessItem(adminContext(), "groups"))
}

func TestFilteringIsIdempotent(t *testing.T) {
	ctx := access.NewContext(&access.Team{TeamRoles: teamRoles("REPORTING", "SCANS")}, int64ptr(7))
	first := access.AccessibleItems(ctx)
	second := access.AccessibleItems(ctx)
	assert.Equal(t, navIDs(first), navIDs(second))
}

func TestHomeQuickActionsSubsetOfSidebar(t *testing.T) {
	contexts := map[string]access.Context{
		"admin":          adminContext(),
		"data":           access.NewContext(&access.Team{TeamRoles: teamRoles("DATA")}, nil),
		"location admin": access.NewContext(&access.Team{TeamRoles: teamRoles("LOCATION_ADMIN")}, int64ptr(3)),
		"empty":          {},
	}
	for name, ctx := range contexts {
		sidebar := map[string]bool{}
		for _, item := range access.AccessibleItems(ctx) {
			sidebar[item.ID] = true
		}
		for _, item := range access.HomeQuickActions(ctx, 100) {
			assert.True(t, sidebar[item.ID], "%s: home item %s missing from sidebar", name, item.ID)
		}
	}
}

func TestHomeQuickActionsOrderingAndCap(t *testing.T) {
	actions := access.HomeQuickActions(adminContext(), 0)
	require.Len(t, actions, access.DefaultHomeQuickActions)
	for i := 1; i < len(actions); i++ {
		prev, cur := actions[i-1].HomePriority, actions[i].HomePriority
		if prev == 0 {
			prev = 99
		}
		if cur == 0 {
			cur = 99
		}
		assert.LessOrEqual(t, prev, cur)
	}
	// Highest priority item comes first.
	assert.Equal(t, "rewards-transactions", actions[0].ID)
}

func TestHomeNeverOffersItself(t *testing.T) {
	for _, item := range access.HomeQuickActions(adminContext(), 100) {
		assert.NotEqual(t, "home", item.ID)
	}
}

func TestCanAccessItemUnknownIDFailsClosed(t *testing.T) {
	assert.False(t, access.CanAccessItem(adminContext(), "no-such-item"))
}

func TestPriceUsersItemRequiresPriceAdmin(t *testing.T) {
	priceAdmin := access.NewContext(&access.Team{TeamRoles: teamRoles("PRICE_ADMIN")}, nil)
	assert.True(t, access.CanAccessItem(priceAdmin, "price-users"))

	priceUser := access.NewContext(&access.Team{TeamRoles: teamRoles("PRICE_USER")}, nil)
	assert.False(t, access.CanAccessItem(priceUser, "price-users"))

	// hasRole carries the admin bypass.
	assert.True(t, access.CanAccessItem(adminContext(), "price-users"))
}

func TestItemsReturnsCopy(t *testing.T) {
	items := access.Items()
	require.NotEmpty(t, items)
	items[0].ID = "mutated"
	assert.NotEqual(t, "mutated", access.Items()[0].ID)
}
