package access

import (
	"slices"
	"strings"
)

// HasRole reports whether the team's role set satisfies requiredRole.
// Matching is case-insensitive and holding ADMIN satisfies any requirement.
// Empty or nil teamRoles fails closed.
func HasRole(teamRoles []TeamRole, requiredRole string) bool {
	if len(teamRoles) == 0 {
		return false
	}
	want := strings.ToUpper(requiredRole)
	for _, tr := range teamRoles {
		name := strings.ToUpper(tr.Role.Name)
		if name == want || name == RoleAdmin {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the team holds at least one of requiredRoles.
// An empty requirement list grants nothing, except that ADMIN always passes.
func HasAnyRole(teamRoles []TeamRole, requiredRoles []string) bool {
	if len(teamRoles) == 0 {
		return false
	}
	want := make([]string, len(requiredRoles))
	for i, r := range requiredRoles {
		want[i] = strings.ToUpper(r)
	}
	for _, tr := range teamRoles {
		name := strings.ToUpper(tr.Role.Name)
		if name == RoleAdmin || slices.Contains(want, name) {
			return true
		}
	}
	return false
}

// HasLocationAccess reports whether locationID is among the user's assigned
// locations. Exact string membership; "123" never matches "1234".
func HasLocationAccess(userLocations []string, locationID string) bool {
	if len(userLocations) == 0 {
		return false
	}
	return slices.Contains(userLocations, locationID)
}

// HasGroupAccess reports whether the user's group assignment matches groupID.
// A nil or zero group id means "no group" and never matches, even against
// a zero target.
func HasGroupAccess(userGroupID *int64, groupID int64) bool {
	if userGroupID == nil || *userGroupID == 0 {
		return false
	}
	return *userGroupID == groupID
}

// IsLocationAdmin reports whether the team may administer location-scoped
// users. Admin bypass applies via HasRole.
func IsLocationAdmin(teamRoles []TeamRole) bool {
	return HasRole(teamRoles, RoleLocationAdmin)
}

// IsLocationUser is an identity check, not a capability check: it is true
// only for teams literally carrying LOCATION_USER. Admins are not implicitly
// location users; routing keyed on this must not fire for them.
func IsLocationUser(teamRoles []TeamRole) bool {
	for _, tr := range teamRoles {
		if tr.Role.Name == RoleLocationUser {
			return true
		}
	}
	return false
}

// IsPriceUser is an identity check for PRICE_USER with no admin bypass.
func IsPriceUser(teamRoles []TeamRole) bool {
	for _, tr := range teamRoles {
		if tr.Role.Name == RolePriceUser {
			return true
		}
	}
	return false
}

// IsPriceAdmin reports whether the team may manage the price portal.
// Admin bypass applies via HasRole.
func IsPriceAdmin(teamRoles []TeamRole) bool {
	return HasRole(teamRoles, RolePriceAdmin)
}
