package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {OrderCompleted},
}

// CanTransition reports whether an order may move from one status to another
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return slices.Contains(orderTransitions[s], to)
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a customer purchase from one workspace
type Order struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AssignedTo  *uuid.UUID      `json:"assigned_to,omitempty"`
	Note        string          `json:"note"`
	Items       []OrderItem     `json:"items"`
	PlacedAt    time.Time       `json:"placed_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItem is a priced line of an order; the variant may be deleted later
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderStatusHistory is an immutable record of a status or assignment change
type OrderStatusHistory struct {
	ID        uuid.UUID   `json:"id"`
	OrderID   uuid.UUID   `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note"`
	ChangedBy uuid.UUID   `json:"changed_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// CheckoutInput carries optional checkout data
type CheckoutInput struct {
	Note string `json:"note" validate:"omitempty,max=1000"`
}

// OrderStatusUpdate moves an order to a new status
type OrderStatusUpdate struct {
	Status OrderStatus `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED COMPLETED CANCELLED"`
	Note   string      `json:"note" validate:"omitempty,max=1000"`
}

// OrderAssign assigns an order to a staff member
type OrderAssign struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
	Note    string    `json:"note" validate:"omitempty,max=1000"`
}

// OrderFilter narrows a workspace order listing
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
	Offset int
}

// StockChange is a variant whose stock moved during an order write
type StockChange struct {
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Stock     int       `json:"stock"`
}

// OrderEvent is the integration event published for order changes
type OrderEvent struct {
	EventID     uuid.UUID       `json:"event_id"`
	EventType   string          `json:"event_type"`
	OrderID     uuid.UUID       `json:"order_id"`
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
)

// NewOrderEvent builds an event for the order's current state
func NewOrderEvent(eventType string, o *Order) OrderEvent {
	return OrderEvent{
		EventID:     uuid.New(),
		EventType:   eventType,
		OrderID:     o.ID,
		WorkspaceID: o.WorkspaceID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}
