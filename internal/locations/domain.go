// Package locations serves the store location directory. The directory is
// read-heavy and changes rarely, so reads go through a versioned Redis cache.
package locations

// Location is a single store site. ID is the external store number and is
// treated as an opaque string everywhere.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Active  bool   `json:"active"`
}

// NewLocation is the payload for registering a location.
type NewLocation struct {
	ID      string `json:"id" validate:"required,min=1,max=32"`
	Name    string `json:"name" validate:"required,min=2,max=200"`
	Address string `json:"address" validate:"max=300"`
}
