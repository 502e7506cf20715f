// Package pricing manages per-location menu price mappings for the price
// portal. Prices are exact decimals end to end; nothing here touches floats.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mapping is one priced item at one location.
type Mapping struct {
	ID          int64           `json:"id"`
	LocationID  string          `json:"locationId"`
	ItemCode    string          `json:"itemCode"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewMapping is the payload for creating or refreshing a mapping.
type NewMapping struct {
	LocationID  string          `json:"locationId" validate:"required,min=1,max=32"`
	ItemCode    string          `json:"itemCode" validate:"required,min=1,max=64"`
	Description string          `json:"description" validate:"max=300"`
	Price       decimal.Decimal `json:"price"`
}

// PriceChange updates the price of an existing mapping.
type PriceChange struct {
	Price decimal.Decimal `json:"price"`
}
