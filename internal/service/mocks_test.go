package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/realtime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockWorkspaceRepository mocks the WorkspaceRepository interface
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Workspace, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) AssignRole(ctx context.Context, assignment domain.RoleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]domain.WorkspaceMember), args.Error(1)
}

func (m *MockWorkspaceRepository) MemberIDs(ctx context.Context, workspaceID uuid.UUID, roles ...domain.Role) ([]uuid.UUID, error) {
	args := m.Called(ctx, workspaceID, roles)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockWorkspaceRepository) ListRoles(ctx context.Context, userID uuid.UUID) ([]domain.RoleAssignment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.RoleAssignment), args.Error(1)
}

// MockInvitationRepository mocks the InvitationRepository interface
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockInvitationRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Invitation, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) ListPending(ctx context.Context, workspaceID uuid.UUID, now time.Time) ([]domain.Invitation, error) {
	args := m.Called(ctx, workspaceID, now)
	return args.Get(0).([]domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvitationStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) Accept(ctx context.Context, invitation *domain.Invitation, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, invitation, userID, at)
	return args.Error(0)
}

func (m *MockInvitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Category, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) NameExists(ctx context.Context, workspaceID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, workspaceID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, workspaceID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountProducts(ctx context.Context, workspaceID, id uuid.UUID) (int, error) {
	args := m.Called(ctx, workspaceID, id)
	return args.Int(0), args.Error(1)
}

// MockProductRepository mocks the ProductRepository interface
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*domain.Product, error) {
	args := m.Called(ctx, workspaceID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, workspaceID uuid.UUID, page, pageSize int) (*domain.ProductPage, error) {
	args := m.Called(ctx, workspaceID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductPage), args.Error(1)
}

func (m *MockProductRepository) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, workspaceID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SetActive(ctx context.Context, workspaceID, id uuid.UUID, active bool) error {
	args := m.Called(ctx, workspaceID, id, active)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *MockProductRepository) Stats(ctx context.Context, workspaceID uuid.UUID, lowStock int) (*domain.ProductStats, error) {
	args := m.Called(ctx, workspaceID, lowStock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductStats), args.Error(1)
}

func (m *MockProductRepository) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.ProductVariant), args.Error(1)
}

func (m *MockProductRepository) GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*domain.ProductVariant, error) {
	args := m.Called(ctx, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductVariant), args.Error(1)
}

func (m *MockProductRepository) GetVariantRef(ctx context.Context, variantID uuid.UUID) (*domain.VariantRef, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VariantRef), args.Error(1)
}

func (m *MockProductRepository) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	args := m.Called(ctx, productID, variantID)
	return args.Error(0)
}

// MockCartRepository mocks the CartRepository interface
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) Add(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, userID, variantID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, userID, variantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, variantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCartRepository) UnavailableVariantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockOrderRepository mocks the OrderRepository interface
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Place(ctx context.Context, order *domain.Order) ([]domain.StockChange, error) {
	args := m.Called(ctx, order)
	return args.Get(0).([]domain.StockChange), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, workspaceID, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAssigned(ctx context.Context, workspaceID, staffID uuid.UUID) ([]domain.Order, error) {
	args := m.Called(ctx, workspaceID, staffID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, to domain.OrderStatus, note string, changedBy uuid.UUID, restock bool) error {
	args := m.Called(ctx, order, to, note, changedBy, restock)
	return args.Error(0)
}

func (m *MockOrderRepository) SetAssignee(ctx context.Context, order *domain.Order, assignee *uuid.UUID, note string, changedBy uuid.UUID) error {
	args := m.Called(ctx, order, assignee, note, changedBy)
	return args.Error(0)
}

func (m *MockOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]domain.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.OrderStatusHistory), args.Error(1)
}

// MockBillRepository mocks the BillRepository interface
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Bill, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Bill, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, from, to domain.BillStatus) (bool, error) {
	args := m.Called(ctx, workspaceID, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *MockBillRepository) ListByCreator(ctx context.Context, workspaceID, userID uuid.UUID) ([]domain.Bill, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillRepository) UpdateCustomer(ctx context.Context, workspaceID, id uuid.UUID, customerName string) (bool, error) {
	args := m.Called(ctx, workspaceID, id, customerName)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) AddItem(ctx context.Context, workspaceID uuid.UUID, item domain.BillItem) error {
	args := m.Called(ctx, workspaceID, item)
	return args.Error(0)
}

func (m *MockBillRepository) UpdateItemQuantity(ctx context.Context, workspaceID, billID, itemID uuid.UUID, quantity int) error {
	args := m.Called(ctx, workspaceID, billID, itemID, quantity)
	return args.Error(0)
}

func (m *MockBillRepository) DeleteItem(ctx context.Context, workspaceID, billID, itemID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, billID, itemID)
	return args.Error(0)
}

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateMany(ctx context.Context, notifications []domain.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, userID uuid.UUID, query domain.NotificationQuery) (*domain.NotificationPage, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationPage), args.Error(1)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, workspaceID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, workspaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockDashboardRepository mocks the DashboardRepository interface
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) CountActiveProducts(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	args := m.Called(ctx, workspaceID)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardRepository) CountLowStockVariants(ctx context.Context, workspaceID uuid.UUID, threshold int) (int, error) {
	args := m.Called(ctx, workspaceID, threshold)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardRepository) CountCategories(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	args := m.Called(ctx, workspaceID)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardRepository) CountOrdersSince(ctx context.Context, workspaceID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, workspaceID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardRepository) RecentOrders(ctx context.Context, workspaceID uuid.UUID, limit int) ([]domain.OrderPreview, error) {
	args := m.Called(ctx, workspaceID, limit)
	return args.Get(0).([]domain.OrderPreview), args.Error(1)
}

func (m *MockDashboardRepository) PendingBills(ctx context.Context, workspaceID uuid.UUID, limit int) ([]domain.BillPreview, error) {
	args := m.Called(ctx, workspaceID, limit)
	return args.Get(0).([]domain.BillPreview), args.Error(1)
}

func (m *MockDashboardRepository) InvitationsWithStatusPending(ctx context.Context, workspaceIDs []uuid.UUID) ([]domain.Invitation, error) {
	args := m.Called(ctx, workspaceIDs)
	return args.Get(0).([]domain.Invitation), args.Error(1)
}

func (m *MockDashboardRepository) Revenue(ctx context.Context, workspaceIDs []uuid.UUID) ([]domain.WorkspaceRevenue, error) {
	args := m.Called(ctx, workspaceIDs)
	return args.Get(0).([]domain.WorkspaceRevenue), args.Error(1)
}

func (m *MockDashboardRepository) RevenueByMonth(ctx context.Context, workspaceIDs []uuid.UUID) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx, workspaceIDs)
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

func (m *MockDashboardRepository) UsersByRole(ctx context.Context, workspaceIDs []uuid.UUID) (map[domain.Role]int, error) {
	args := m.Called(ctx, workspaceIDs)
	return args.Get(0).(map[domain.Role]int), args.Error(1)
}

func (m *MockDashboardRepository) WorkspaceStatus(ctx context.Context, workspaceIDs []uuid.UUID) (domain.WorkspaceStatusCount, error) {
	args := m.Called(ctx, workspaceIDs)
	return args.Get(0).(domain.WorkspaceStatusCount), args.Error(1)
}

func (m *MockDashboardRepository) TopSellingVariants(ctx context.Context, workspaceIDs []uuid.UUID, limit int) ([]domain.VariantSales, error) {
	args := m.Called(ctx, workspaceIDs, limit)
	return args.Get(0).([]domain.VariantSales), args.Error(1)
}

func (m *MockDashboardRepository) MostActiveWorkspaces(ctx context.Context, workspaceIDs []uuid.UUID, limit int) ([]domain.WorkspaceActivity, error) {
	args := m.Called(ctx, workspaceIDs, limit)
	return args.Get(0).([]domain.WorkspaceActivity), args.Error(1)
}

func (m *MockDashboardRepository) SalesRows(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]domain.SalesRow, error) {
	args := m.Called(ctx, workspaceID, from, to)
	return args.Get(0).([]domain.SalesRow), args.Error(1)
}

func (m *MockDashboardRepository) StockLevels(ctx context.Context, workspaceID uuid.UUID, threshold, limit int) ([]domain.StockLevel, error) {
	args := m.Called(ctx, workspaceID, threshold, limit)
	return args.Get(0).([]domain.StockLevel), args.Error(1)
}

func (m *MockDashboardRepository) EmployeePerformance(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]domain.EmployeePerformance, error) {
	args := m.Called(ctx, workspaceID, from, to)
	return args.Get(0).([]domain.EmployeePerformance), args.Error(1)
}

func (m *MockDashboardRepository) CustomerSummaries(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, limit, offset int) ([]domain.CustomerSummary, error) {
	args := m.Called(ctx, workspaceID, from, to, limit, offset)
	return args.Get(0).([]domain.CustomerSummary), args.Error(1)
}

// recordingPublisher captures pushed realtime events per user
type recordingPublisher struct {
	mu     sync.Mutex
	events map[uuid.UUID][]realtime.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[uuid.UUID][]realtime.Event)}
}

func (p *recordingPublisher) Publish(_ context.Context, userID uuid.UUID, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[userID] = append(p.events[userID], event)
}

func (p *recordingPublisher) names(userID uuid.UUID) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events[userID]))
	for _, e := range p.events[userID] {
		names = append(names, e.Name)
	}
	return names
}

// newTestCache returns a cache over a fresh in-memory store
func newTestCache(t *testing.T) (*cache.Cache, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(0)
	t.Cleanup(store.Close)
	return cache.New(store, cache.DefaultTTLs, nil), store
}
