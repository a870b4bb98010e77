package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus is the payment state of an in-store bill
type BillStatus string

const (
	BillPending   BillStatus = "PENDING"
	BillPaid      BillStatus = "PAID"
	BillCancelled BillStatus = "CANCELLED"
)

// CanTransition reports whether a bill may move to the given status
func (s BillStatus) CanTransition(to BillStatus) bool {
	return s == BillPending && (to == BillPaid || to == BillCancelled)
}

// Bill is an in-store sale recorded by workspace staff
type Bill struct {
	ID           uuid.UUID       `json:"id"`
	WorkspaceID  uuid.UUID       `json:"workspace_id"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	CustomerName string          `json:"customer_name"`
	Status       BillStatus      `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []BillItem      `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BillItem is a priced line of a bill
type BillItem struct {
	ID        uuid.UUID       `json:"id"`
	BillID    uuid.UUID       `json:"bill_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// BillCreate represents bill input
type BillCreate struct {
	CustomerName string          `json:"customer_name" validate:"omitempty,max=255"`
	Items        []BillItemInput `json:"items" validate:"required,min=1,dive"`
}

// BillItemInput is one variant line of a new bill
type BillItemInput struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

// BillStatusUpdate changes a bill's status
type BillStatusUpdate struct {
	Status BillStatus `json:"status" validate:"required,oneof=PAID CANCELLED"`
}

// BillUpdate changes the header of a PENDING bill
type BillUpdate struct {
	CustomerName *string `json:"customer_name,omitempty" validate:"omitempty,max=255"`
}

// BillItemUpdate sets the quantity of one bill line
type BillItemUpdate struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}
