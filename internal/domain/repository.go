package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository persists users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// WorkspaceRepository persists workspaces and role assignments
type WorkspaceRepository interface {
	// Create inserts the workspace and grants its owner ADMIN in one transaction
	Create(ctx context.Context, workspace *Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Workspace, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Workspace, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, workspace *Workspace) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	AssignRole(ctx context.Context, assignment RoleAssignment) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) (int64, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]WorkspaceMember, error)
	// MemberIDs returns distinct members holding any of roles, or every member when roles is empty
	MemberIDs(ctx context.Context, workspaceID uuid.UUID, roles ...Role) ([]uuid.UUID, error)
	ListRoles(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error)
}

// InvitationRepository persists invitations
type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Invitation, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	ListPending(ctx context.Context, workspaceID uuid.UUID, now time.Time) ([]Invitation, error)
	// UpdateStatus changes status only while the row is still PENDING
	UpdateStatus(ctx context.Context, id uuid.UUID, status InvitationStatus) (bool, error)
	// Accept marks the invitation ACCEPTED and grants the role in one transaction
	Accept(ctx context.Context, invitation *Invitation, userID uuid.UUID, at time.Time) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// CategoryRepository persists categories
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Category, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Category, error)
	NameExists(ctx context.Context, workspaceID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	CountProducts(ctx context.Context, workspaceID, id uuid.UUID) (int, error)
}

// ProductRepository persists products and their variants
type ProductRepository interface {
	// Create inserts the product and its variants in one transaction
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*Product, error)
	List(ctx context.Context, workspaceID uuid.UUID, page, pageSize int) (*ProductPage, error)
	SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, product *Product) error
	SetActive(ctx context.Context, workspaceID, id uuid.UUID, active bool) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	Stats(ctx context.Context, workspaceID uuid.UUID, lowStock int) (*ProductStats, error)

	ListVariants(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error)
	GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*ProductVariant, error)
	GetVariantRef(ctx context.Context, variantID uuid.UUID) (*VariantRef, error)
	CreateVariant(ctx context.Context, variant *ProductVariant) error
	UpdateVariant(ctx context.Context, variant *ProductVariant) error
	DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error
}

// CartRepository persists user carts
type CartRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]CartItem, error)
	// Add inserts the line or increases its quantity. It rejects a variant of a
	// second workspace and a total quantity above stock.
	Add(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*CartItem, error)
	SetQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) (bool, error)
	Remove(ctx context.Context, userID, variantID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
	Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	UnavailableVariantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// OrderRepository persists orders and their history
type OrderRepository interface {
	// Place decrements stock, inserts the order with a PENDING history row and
	// clears the buyer's cart in one transaction.
	Place(ctx context.Context, order *Order) ([]StockChange, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Order, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter OrderFilter) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAssigned(ctx context.Context, workspaceID, staffID uuid.UUID) ([]Order, error)
	// UpdateStatus moves the order from one status to another and appends
	// history; restock returns line quantities to their variants.
	UpdateStatus(ctx context.Context, order *Order, to OrderStatus, note string, changedBy uuid.UUID, restock bool) error
	SetAssignee(ctx context.Context, order *Order, assignee *uuid.UUID, note string, changedBy uuid.UUID) error
	History(ctx context.Context, orderID uuid.UUID) ([]OrderStatusHistory, error)
}

// BillRepository persists in-store bills
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Bill, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Bill, error)
	ListByCreator(ctx context.Context, workspaceID, userID uuid.UUID) ([]Bill, error)
	UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, from, to BillStatus) (bool, error)
	// UpdateCustomer renames the customer of a PENDING bill
	UpdateCustomer(ctx context.Context, workspaceID, id uuid.UUID, customerName string) (bool, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error

	// The item edits lock a PENDING bill, apply the change and recompute its
	// total in one transaction. A bill that is no longer PENDING is a Conflict.
	AddItem(ctx context.Context, workspaceID uuid.UUID, item BillItem) error
	UpdateItemQuantity(ctx context.Context, workspaceID, billID, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, workspaceID, billID, itemID uuid.UUID) error
}

// NotificationRepository persists notifications
type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, userID uuid.UUID, query NotificationQuery) (*NotificationPage, error)
	UnreadCount(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// DashboardRepository runs the read-only aggregate queries behind dashboards
type DashboardRepository interface {
	CountActiveProducts(ctx context.Context, workspaceID uuid.UUID) (int, error)
	CountLowStockVariants(ctx context.Context, workspaceID uuid.UUID, threshold int) (int, error)
	CountCategories(ctx context.Context, workspaceID uuid.UUID) (int, error)
	CountOrdersSince(ctx context.Context, workspaceID uuid.UUID, since time.Time) (int, error)
	RecentOrders(ctx context.Context, workspaceID uuid.UUID, limit int) ([]OrderPreview, error)
	PendingBills(ctx context.Context, workspaceID uuid.UUID, limit int) ([]BillPreview, error)
	// InvitationsWithStatusPending returns stored PENDING rows, including ones already past expiry
	InvitationsWithStatusPending(ctx context.Context, workspaceIDs []uuid.UUID) ([]Invitation, error)

	// Revenue sums non-cancelled orders per workspace
	Revenue(ctx context.Context, workspaceIDs []uuid.UUID) ([]WorkspaceRevenue, error)
	RevenueByMonth(ctx context.Context, workspaceIDs []uuid.UUID) ([]MonthlyRevenue, error)
	UsersByRole(ctx context.Context, workspaceIDs []uuid.UUID) (map[Role]int, error)
	WorkspaceStatus(ctx context.Context, workspaceIDs []uuid.UUID) (WorkspaceStatusCount, error)
	TopSellingVariants(ctx context.Context, workspaceIDs []uuid.UUID, limit int) ([]VariantSales, error)
	MostActiveWorkspaces(ctx context.Context, workspaceIDs []uuid.UUID, limit int) ([]WorkspaceActivity, error)
	SalesRows(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]SalesRow, error)

	// StockLevels lists variants below threshold, lowest stock first
	StockLevels(ctx context.Context, workspaceID uuid.UUID, threshold, limit int) ([]StockLevel, error)
	// EmployeePerformance aggregates assigned orders and created bills per
	// ADMIN, MANAGER and STAFF member in [from, to)
	EmployeePerformance(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]EmployeePerformance, error)
	// CustomerSummaries ranks buyers by spend in [from, to)
	CustomerSummaries(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, limit, offset int) ([]CustomerSummary, error)
}
