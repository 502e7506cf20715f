// Package groups manages location groups: named sets of store locations that
// scope what a location admin may administer.
package groups

// Group is a named set of location identifiers.
type Group struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	LocationIDs []string `json:"locationIds"`
}

// NewGroup is the payload for creating a group.
type NewGroup struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	LocationIDs []string `json:"locationIds" validate:"dive,min=1"`
}
