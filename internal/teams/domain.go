// Package teams manages the team directory and team role assignments. A team
// is the unit capabilities attach to; users inherit every role their team
// carries.
package teams

import "github.com/chainops/chainops/internal/access"

// Team is the management view of a team, roles included.
type Team = access.Team

// NewTeam is the payload for creating a team.
type NewTeam struct {
	TeamName string   `json:"teamName" validate:"required,min=2,max=100"`
	IsAdmin  bool     `json:"isAdmin"`
	Roles    []string `json:"roles" validate:"dive,min=2"`
}
