package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one variant line in a user's cart
type CartItem struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	VariantID uuid.UUID  `json:"variant_id"`
	Quantity  int        `json:"quantity"`
	Variant   VariantRef `json:"variant"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Subtotal is price times quantity
func (c *CartItem) Subtotal() decimal.Decimal {
	return c.Variant.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartItemInput adds a variant to the cart
type CartItemInput struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

// CartQuantityUpdate sets a line quantity; zero removes the line
type CartQuantityUpdate struct {
	Quantity int `json:"quantity" validate:"min=0,max=999"`
}

// CartSummary is the cart with its total and availability
type CartSummary struct {
	Items            []CartItem      `json:"items"`
	ItemCount        int             `json:"item_count"`
	Total            decimal.Decimal `json:"total"`
	AllAvailable     bool            `json:"all_available"`
	UnavailableItems []uuid.UUID     `json:"unavailable_items"`
	WorkspaceID      *uuid.UUID      `json:"workspace_id,omitempty"`
}
