package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPreview is a compact order row for dashboards
type OrderPreview struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PlacedAt    time.Time       `json:"placed_at"`
}

// BillPreview is a compact bill row for dashboards
type BillPreview struct {
	ID           uuid.UUID       `json:"id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// WorkspaceDashboard aggregates one workspace's activity
type WorkspaceDashboard struct {
	Workspace          *Workspace        `json:"workspace"`
	TotalProducts      int               `json:"total_products"`
	LowStockVariants   int               `json:"low_stock_variants"`
	TotalCategories    int               `json:"total_categories"`
	RecentOrdersCount  int               `json:"recent_orders_count"`
	RecentOrders       []OrderPreview    `json:"recent_orders"`
	PendingBills       []BillPreview     `json:"pending_bills"`
	Revenue            decimal.Decimal   `json:"revenue"`
	Team               []WorkspaceMember `json:"team"`
	PendingInvitations int               `json:"pending_invitations"`
}

// WorkspaceRevenue is completed revenue of one workspace
type WorkspaceRevenue struct {
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	Name        string          `json:"name"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// MonthlyRevenue is revenue of one calendar month
type MonthlyRevenue struct {
	Month   time.Time       `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// WorkspaceActivity counts orders placed in one workspace
type WorkspaceActivity struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	OrderCount  int       `json:"order_count"`
}

// VariantSales is the sold quantity of one variant
type VariantSales struct {
	VariantID    uuid.UUID       `json:"variant_id"`
	ProductName  string          `json:"product_name"`
	Title        string          `json:"title"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// WorkspaceStatusCount counts active and inactive workspaces
type WorkspaceStatusCount struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// AdminDashboard aggregates every workspace a user owns
type AdminDashboard struct {
	UsersByRole          map[Role]int         `json:"users_by_role"`
	WorkspaceStatus      WorkspaceStatusCount `json:"workspace_status"`
	TotalRevenue         decimal.Decimal      `json:"total_revenue"`
	RevenueByWorkspace   []WorkspaceRevenue   `json:"revenue_by_workspace"`
	RevenueByMonth       []MonthlyRevenue     `json:"revenue_by_month"`
	PendingInvitations   []Invitation         `json:"pending_invitations"`
	ExpiredInvitations   []Invitation         `json:"expired_invitations"`
	TopSellingVariants   []VariantSales       `json:"top_selling_variants"`
	MostActiveWorkspaces []WorkspaceActivity  `json:"most_active_workspaces"`
}

// StaffDashboard summarises the orders assigned to one staff member
type StaffDashboard struct {
	TotalOrders    int             `json:"total_orders"`
	OrdersToday    int             `json:"orders_today"`
	Processing     int             `json:"processing"`
	Shipped        int             `json:"shipped"`
	Completed      int             `json:"completed"`
	Delivered      int             `json:"delivered"`
	Revenue        decimal.Decimal `json:"revenue"`
	AssignedOrders []OrderPreview  `json:"assigned_orders"`
}

// SalesRow is one exported order line
type SalesRow struct {
	OrderID   uuid.UUID
	PlacedAt  time.Time
	Status    OrderStatus
	Customer  string
	Product   string
	Variant   string
	Quantity  int
	UnitPrice decimal.Decimal
}

// StockLevel is the stock of one variant
type StockLevel struct {
	VariantID   uuid.UUID `json:"variant_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Title       string    `json:"title"`
	SKU         string    `json:"sku"`
	Stock       int       `json:"stock"`
	IsAvailable bool      `json:"is_available"`
}

// InventoryReport is the catalogue summary plus every variant running low
type InventoryReport struct {
	Summary   ProductStats `json:"summary"`
	Threshold int          `json:"threshold"`
	LowStock  []StockLevel `json:"low_stock"`
}

// EmployeePerformance is the fulfilment and sales record of one team member
type EmployeePerformance struct {
	UserID          uuid.UUID       `json:"user_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            Role            `json:"role"`
	AssignedOrders  int             `json:"assigned_orders"`
	FulfilledOrders int             `json:"fulfilled_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	OrderRevenue    decimal.Decimal `json:"order_revenue"`
	BillsCreated    int             `json:"bills_created"`
	BillRevenue     decimal.Decimal `json:"bill_revenue"`
}

// EmployeePerformanceReport covers orders and bills of [From, To)
type EmployeePerformanceReport struct {
	From      time.Time             `json:"from"`
	To        time.Time             `json:"to"`
	Employees []EmployeePerformance `json:"employees"`
}

// CustomerSummary is one buyer's order history in a workspace
type CustomerSummary struct {
	UserID      uuid.UUID       `json:"user_id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	OrderCount  int             `json:"order_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrderAt time.Time       `json:"last_order_at"`
}

// CustomerReport is one page of buyers ranked by spend in [From, To)
type CustomerReport struct {
	From      time.Time         `json:"from"`
	To        time.Time         `json:"to"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
	Customers []CustomerSummary `json:"customers"`
}
