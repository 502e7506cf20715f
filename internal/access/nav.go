package access

import "sort"

// Category groups navigation items in the sidebar.
type Category string

const (
	CategoryMain    Category = "main"
	CategoryReports Category = "reports"
	CategoryAdmin   Category = "admin"
)

// NavItem describes one navigable portal surface and who may see it. The
// table below is the single source of truth consumed by both the sidebar
// and the home-page quick actions, so the two can never drift apart.
type NavItem struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Href      string   `json:"href"`
	Icon      string   `json:"icon"`
	CanAccess func(Context) bool `json:"-"`
	// ShowOnHome marks items eligible for the home-page quick actions.
	ShowOnHome bool `json:"showOnHome"`
	// HomePriority orders quick actions ascending; zero means unset and
	// sorts last.
	HomePriority int      `json:"homePriority,omitempty"`
	Category     Category `json:"category"`
	IsSubItem    bool     `json:"isSubItem,omitempty"`
}

// navItems is immutable configuration assembled once at init. Predicates are
// pure functions of the Context and must stay independent of each other so
// the table can be filtered for any surface in any order.
var navItems = []NavItem{
	{
		ID:        "home",
		Label:     "Home",
		Href:      "/home",
		Icon:      "home",
		CanAccess: func(Context) bool { return true },
		Category:  CategoryMain,
	},
	{
		ID:           "teams",
		Label:        "Teams",
		Href:         "/teams",
		Icon:         "users",
		CanAccess:    func(Context) bool { return true },
		ShowOnHome:   true,
		HomePriority: 4,
		Category:     CategoryMain,
	},
	{
		ID:    "groups",
		Label: "Groups",
		Href:  "/groups",
		Icon:  "folder",
		CanAccess: func(ctx Context) bool {
			return ctx.IsTrueAdmin ||
				(HasRole(ctx.TeamRoles, RoleLocationAdmin) && ctx.GroupID != nil && *ctx.GroupID != 0)
		},
		ShowOnHome:   true,
		HomePriority: 5,
		Category:     CategoryMain,
	},
	{
		ID:        "users",
		Label:     "Users",
		Href:      "/users",
		Icon:      "user",
		CanAccess: func(ctx Context) bool { return ctx.IsTrueAdmin },
		Category:  CategoryAdmin,
	},
	{
		ID:    "price-users",
		Label: "Price Users",
		Href:  "/price-users",
		Icon:  "user",
		CanAccess: func(ctx Context) bool {
			return HasRole(ctx.TeamRoles, RolePriceAdmin)
		},
		Category: CategoryAdmin,
	},
	{
		ID:    "rewards-transactions",
		Label: "Rewards Transactions",
		Href:  "/departments/data",
		Icon:  "file-text",
		CanAccess: func(ctx Context) bool {
			return ctx.IsTrueAdmin || HasRole(ctx.TeamRoles, RoleData)
		},
		ShowOnHome:   true,
		HomePriority: 1,
		Category:     CategoryReports,
		IsSubItem:    true,
	},
	{
		ID:    "percent-of-scans",
		Label: "% of Scans",
		Href:  "/departments/percent-of-scans",
		Icon:  "activity",
		CanAccess: func(ctx Context) bool {
			return ctx.IsTrueAdmin || HasRole(ctx.TeamRoles, RoleScans)
		},
		ShowOnHome:   true,
		HomePriority: 2,
		Category:     CategoryReports,
		IsSubItem:    true,
	},
	{
		ID:    "red-flag-reports",
		Label: "Red Flag Reports",
		Href:  "/departments/reporting",
		Icon:  "layers",
		CanAccess: func(ctx Context) bool {
			return ctx.IsTrueAdmin || HasRole(ctx.TeamRoles, RoleReporting)
		},
		ShowOnHome:   true,
		HomePriority: 3,
		Category:     CategoryReports,
		IsSubItem:    true,
	},
	{
		ID:    "raw-data",
		Label: "Raw Data",
		Href:  "/departments/raw-data",
		Icon:  "database",
		CanAccess: func(ctx Context) bool {
			return ctx.IsTrueAdmin || HasRole(ctx.TeamRoles, RoleRawData)
		},
		Category:  CategoryReports,
		IsSubItem: true,
	},
	{
		ID:    "raw-loyalty",
		Label: "Raw Loyalty Reporting",
		Href:  "/departments/raw-loyalty",
		Icon:  "database",
		CanAccess: func(ctx Context) bool {
			return ctx.IsTrueAdmin || HasRole(ctx.TeamRoles, RoleRawLoyaltyReporting)
		},
		Category:  CategoryReports,
		IsSubItem: true,
	},
	{
		ID:    "price-portal",
		Label: "Price Portal",
		Href:  "/departments/price-portal",
		Icon:  "trending-up",
		CanAccess: func(ctx Context) bool {
			return HasAnyRole(ctx.TeamRoles, []string{RoleLocationAdmin, RoleAdmin, RolePriceAdmin})
		},
		ShowOnHome:   true,
		HomePriority: 2,
		Category:     CategoryReports,
		IsSubItem:    true,
	},
}

// Items returns a copy of the full navigation table.
func Items() []NavItem {
	out := make([]NavItem, len(navItems))
	copy(out, navItems)
	return out
}

// AccessibleItems filters the table down to what ctx may see, optionally
// restricted to one category.
func AccessibleItems(ctx Context, categories ...Category) []NavItem {
	var out []NavItem
	for _, item := range navItems {
		if item.CanAccess == nil || !item.CanAccess(ctx) {
			continue
		}
		if len(categories) > 0 && !containsCategory(categories, item.Category) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// DefaultHomeQuickActions caps the home-page quick action list.
const DefaultHomeQuickActions = 4

// HomeQuickActions returns accessible home-eligible items ordered by
// priority ascending, capped at maxItems (DefaultHomeQuickActions when
// maxItems is not positive).
func HomeQuickActions(ctx Context, maxItems int) []NavItem {
	if maxItems <= 0 {
		maxItems = DefaultHomeQuickActions
	}
	var out []NavItem
	for _, item := range navItems {
		if item.ShowOnHome && item.CanAccess != nil && item.CanAccess(ctx) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return homePriority(out[i]) < homePriority(out[j])
	})
	if len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}

// CanAccessItem reports whether ctx may see the item with the given id.
// Unknown ids fail closed.
func CanAccessItem(ctx Context, itemID string) bool {
	for _, item := range navItems {
		if item.ID == itemID {
			return item.CanAccess != nil && item.CanAccess(ctx)
		}
	}
	return false
}

func homePriority(item NavItem) int {
	if item.HomePriority == 0 {
		return 99
	}
	return item.HomePriority
}

func containsCategory(categories []Category, c Category) bool {
	for _, cat := range categories {
		if cat == c {
			return true
		}
	}
	return false
}
