// Package access holds the portal's authorization core: role and scope
// predicates plus the navigation policy table. Everything here is pure and
// synchronous; callers pass a fresh snapshot of the user's authorization
// attributes on every decision.
package access

// Canonical role names. Roles are reference data seeded once; predicates
// compare against these case-insensitively.
const (
	RoleAdmin               = "ADMIN"
	RoleData                = "DATA"
	RoleReporting           = "REPORTING"
	RoleScans               = "SCANS"
	RoleRawData             = "RAW_DATA"
	RoleRawLoyaltyReporting = "RAW_LOYALTY_REPORTING"
	RoleLocationAdmin       = "LOCATION_ADMIN"
	RoleLocationUser        = "LOCATION_USER"
	RolePriceAdmin          = "PRICE_ADMIN"
	RolePriceUser           = "PRICE_USER"
)

// Role is a named capability grantable to a team.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TeamRole assigns a Role to a Team.
type TeamRole struct {
	ID     int64 `json:"id"`
	TeamID int64 `json:"teamId"`
	RoleID int64 `json:"roleId"`
	Role   Role  `json:"role"`
}

// Team is the unit roles attach to. IsAdmin is a legacy flag kept alongside
// the ADMIN role; NewContext honours both signals.
type Team struct {
	ID        int64      `json:"id"`
	TeamName  string     `json:"teamName"`
	IsAdmin   bool       `json:"isAdmin"`
	TeamRoles []TeamRole `json:"teamRoles"`
}

// User is the authenticated subject snapshot consumed by every policy
// decision. It is read-only here; mutation happens in the users module.
type User struct {
	ID          int64    `json:"userId"`
	Username    string   `json:"username"`
	Team        *Team    `json:"team,omitempty"`
	LocationIDs []string `json:"locationIds,omitempty"`
	GroupID     *int64   `json:"groupId,omitempty"`
}

// Context is the minimal input a policy decision needs. It is derived from a
// User per evaluation and never cached.
type Context struct {
	IsTrueAdmin bool
	TeamRoles   []TeamRole
	GroupID     *int64
}

// NewContext derives a Context from a team and group assignment. IsTrueAdmin
// is the union of the legacy team flag and the ADMIN role.
func NewContext(team *Team, groupID *int64) Context {
	ctx := Context{GroupID: groupID}
	if team != nil {
		ctx.TeamRoles = team.TeamRoles
		ctx.IsTrueAdmin = team.IsAdmin || HasRole(team.TeamRoles, RoleAdmin)
	}
	return ctx
}

// AccessContext returns the policy evaluation context for the user.
func (u *User) AccessContext() Context {
	if u == nil {
		return Context{}
	}
	return NewContext(u.Team, u.GroupID)
}

// TeamRoles returns the user's team role assignments, nil when the user has
// no team.
func (u *User) TeamRoles() []TeamRole {
	if u == nil || u.Team == nil {
		return nil
	}
	return u.Team.TeamRoles
}

// IsTrueAdmin reports whether the user is an administrator via either the
// legacy team flag or the ADMIN role.
func (u *User) IsTrueAdmin() bool {
	if u == nil || u.Team == nil {
		return false
	}
	return u.Team.IsAdmin || HasRole(u.Team.TeamRoles, RoleAdmin)
}
