package users

import "time"

// User represents a portal account for management screens.
type User struct {
	ID          int64     `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	TeamID      *int64    `json:"teamId,omitempty"`
	TeamName    string    `json:"teamName,omitempty"`
	GroupID     *int64    `json:"groupId,omitempty"`
	LocationIDs []string  `json:"locationIds"`
	IsDisabled  bool      `json:"isDisabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewLocationUser carries the input for provisioning a location-scoped user.
type NewLocationUser struct {
	Username    string   `json:"username" validate:"required,min=3"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	TeamID      int64    `json:"teamId" validate:"required"`
	LocationIDs []string `json:"locationIds" validate:"required,min=1"`
}
