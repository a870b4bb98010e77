package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which admins are notified
const LowStockThreshold = 10

// Category groups products inside a workspace
type Category struct {
	ID           uuid.UUID `json:"id"`
	WorkspaceID  uuid.UUID `json:"workspace_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInput represents category create/update data
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// Product is a sellable item with one or more variants
type Product struct {
	ID          uuid.UUID        `json:"id"`
	WorkspaceID uuid.UUID        `json:"workspace_id"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	IsActive    bool             `json:"is_active"`
	Variants    []ProductVariant `json:"variants"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductVariant is a concrete stock-keeping unit of a product
type ProductVariant struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Title       string          `json:"title"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ApplyStockInvariant forces a variant with no stock to be unavailable
func (v *ProductVariant) ApplyStockInvariant() {
	if v.Stock <= 0 {
		v.Stock = max(v.Stock, 0)
		v.IsAvailable = false
	}
}

// IsLowStock reports whether the variant is below the low-stock threshold
func (v *ProductVariant) IsLowStock() bool {
	return v.Stock < LowStockThreshold
}

// VariantInput represents variant creation data
type VariantInput struct {
	Title       string          `json:"title" validate:"required,max=255"`
	SKU         string          `json:"sku" validate:"omitempty,max=100"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	Color       string          `json:"color" validate:"omitempty,max=50"`
	Size        string          `json:"size" validate:"omitempty,max=50"`
	IsAvailable *bool           `json:"is_available,omitempty"`
}

// VariantUpdate represents a partial variant update
type VariantUpdate struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	SKU         *string          `json:"sku,omitempty" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	Color       *string          `json:"color,omitempty" validate:"omitempty,max=50"`
	Size        *string          `json:"size,omitempty" validate:"omitempty,max=50"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

// ProductCreate represents product creation data
type ProductCreate struct {
	CategoryID  uuid.UUID      `json:"category_id" validate:"required"`
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description" validate:"omitempty,max=5000"`
	Images      []string       `json:"images" validate:"omitempty,dive,url"`
	Variants    []VariantInput `json:"variants" validate:"required,min=1,dive"`
}

// ProductUpdate represents a partial product update
type ProductUpdate struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Images      []string   `json:"images,omitempty" validate:"omitempty,dive,url"`
}

// ProductPage is one page of a workspace catalogue
type ProductPage struct {
	Items    []Product `json:"items"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Total    int       `json:"total"`
}

// ProductStats summarises a workspace catalogue
type ProductStats struct {
	TotalProducts      int             `json:"total_products"`
	ActiveProducts     int             `json:"active_products"`
	InactiveProducts   int             `json:"inactive_products"`
	TotalVariants      int             `json:"total_variants"`
	OutOfStockVariants int             `json:"out_of_stock_variants"`
	LowStockVariants   int             `json:"low_stock_variants"`
	InventoryValue     decimal.Decimal `json:"inventory_value"`
}

// VariantRef is a variant joined with the product and workspace it belongs to
type VariantRef struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductSlug   string          `json:"product_slug"`
	ProductActive bool            `json:"product_active"`
	WorkspaceID   uuid.UUID       `json:"workspace_id"`
	Title         string          `json:"title"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	IsAvailable   bool            `json:"is_available"`
}

// Purchasable reports whether quantity units can be bought right now
func (v *VariantRef) Purchasable(quantity int) bool {
	return v.ProductActive && v.IsAvailable && v.Stock >= quantity
}
