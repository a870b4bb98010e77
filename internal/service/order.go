package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/realtime"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 100
)

// OrderService handles checkout and order fulfilment
type OrderService struct {
	orderRepo     domain.OrderRepository
	cartRepo      domain.CartRepository
	workspaceRepo domain.WorkspaceRepository
	notifications *NotificationService
	cache         *cache.Cache
	push          realtime.Publisher
	events        OrderEventPublisher
}

// NewOrderService creates a new order service. notifications and events may be nil.
func NewOrderService(
	orderRepo domain.OrderRepository,
	cartRepo domain.CartRepository,
	workspaceRepo domain.WorkspaceRepository,
	notifications *NotificationService,
	c *cache.Cache,
	push realtime.Publisher,
	events OrderEventPublisher,
) *OrderService {
	if push == nil {
		push = realtime.Discard{}
	}
	return &OrderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		workspaceRepo: workspaceRepo,
		notifications: notifications,
		cache:         c,
		push:          push,
		events:        events,
	}
}

// Checkout turns the caller's cart into a PENDING order of its workspace
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, input domain.CheckoutInput) (*domain.Order, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	workspaceID, err := checkoutLines(items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Status:      domain.OrderPending,
		TotalAmount: decimal.Zero,
		Note:        input.Note,
		Items:       make([]domain.OrderItem, 0, len(items)),
		PlacedAt:    now,
		UpdatedAt:   now,
	}
	for _, item := range items {
		variantID, productID := item.VariantID, item.Variant.ProductID
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			VariantID: &variantID,
			ProductID: &productID,
			Title:     item.Variant.ProductName + " - " + item.Variant.Title,
			Quantity:  item.Quantity,
			Price:     item.Variant.Price,
		})
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	changes, err := s.orderRepo.Place(ctx, order)
	if err != nil {
		return nil, err
	}

	targets := catalogTargets(workspaceID)
	for _, item := range items {
		targets = append(targets,
			cache.Product(item.Variant.ProductID),
			cache.ProductVariants(item.Variant.ProductID),
			cache.ProductSlug(workspaceID, item.Variant.ProductSlug),
		)
	}
	s.cache.Invalidate(ctx, targets...)

	for _, c := range changes {
		if c.Stock < domain.LowStockThreshold {
			notifyLowStock(ctx, s.notifications, workspaceID, c.Title, c.Stock)
		}
	}

	s.announceNewOrder(ctx, order)
	s.publish(ctx, domain.OrderEventCreated, order)

	log.Info().
		Str("order_id", order.ID.String()).
		Str("workspace_id", workspaceID.String()).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order placed")

	return order, nil
}

// Mine lists the caller's own orders
func (s *OrderService) Mine(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// List lists workspace orders, newest first
func (s *OrderService) List(ctx context.Context, workspaceID uuid.UUID, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.Validation("unknown order status")
	}
	if filter.Limit < 1 {
		filter.Limit = defaultOrderLimit
	}
	if filter.Limit > maxOrderLimit {
		filter.Limit = maxOrderLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.orderRepo.ListByWorkspace(ctx, workspaceID, filter)
}

// Get retrieves one order of a workspace
func (s *OrderService) Get(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.GetByID(ctx, workspaceID, id)
}

// UpdateStatus moves an order along the fulfilment workflow. Cancelling returns stock.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, workspaceID, id uuid.UUID, input domain.OrderStatusUpdate) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !from.CanTransition(input.Status) {
		return nil, domain.Conflict(fmt.Sprintf("cannot change order status from %s to %s", from, input.Status))
	}

	restock := input.Status == domain.OrderCancelled
	if err := s.orderRepo.UpdateStatus(ctx, order, input.Status, input.Note, actorID, restock); err != nil {
		return nil, err
	}

	targets := []cache.Target{cache.WorkspaceDashboard(workspaceID)}
	if restock {
		targets = append(targets, cache.WorkspaceScope(workspaceID), cache.ProductStats(workspaceID))
		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			targets = append(targets, cache.Product(*item.ProductID), cache.ProductVariants(*item.ProductID))
		}
	}
	s.cache.Invalidate(ctx, targets...)

	if s.notifications != nil {
		message := fmt.Sprintf("Your order %s is now %s", shortID(order.ID), order.Status)
		if err := s.notifications.NotifyUser(ctx, workspaceID, order.UserID, domain.NotificationOrderUpdate, "Order updated", message); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to notify customer")
		}
	}

	s.push.Publish(ctx, order.UserID, realtime.NewEvent(realtime.EventOrderStatusChanged, map[string]any{
		"order_id":     order.ID,
		"workspace_id": workspaceID,
		"from":         from,
		"status":       order.Status,
	}))
	s.publish(ctx, domain.OrderEventStatusChanged, order)

	return order, nil
}

// Assign hands an order to a staff member of the workspace
func (s *OrderService) Assign(ctx context.Context, actorID, workspaceID, id uuid.UUID, input domain.OrderAssign) (*domain.Order, error) {
	assignments, err := s.workspaceRepo.ListRoles(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	if !domain.RoleSet(assignments).Has(workspaceID, domain.RoleStaff) {
		return nil, domain.Validation("assignee must be a staff member of this workspace")
	}

	order, err := s.orderRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	note := input.Note
	if note == "" {
		note = "assigned to staff"
	}
	staffID := input.StaffID
	if err := s.orderRepo.SetAssignee(ctx, order, &staffID, note, actorID); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return order, nil
}

// Unassign clears an order's assignee. Staff may only release their own orders.
func (s *OrderService) Unassign(ctx context.Context, actorID uuid.UUID, actorRole domain.Role, workspaceID, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if order.AssignedTo == nil {
		return nil, domain.Conflict("order is not assigned")
	}
	if actorRole == domain.RoleStaff && *order.AssignedTo != actorID {
		return nil, domain.Forbidden("order is assigned to someone else")
	}

	if err := s.orderRepo.SetAssignee(ctx, order, nil, "assignment removed", actorID); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return order, nil
}

// History returns the status history of an order, oldest first
func (s *OrderService) History(ctx context.Context, workspaceID, id uuid.UUID) ([]domain.OrderStatusHistory, error) {
	if _, err := s.orderRepo.GetByID(ctx, workspaceID, id); err != nil {
		return nil, err
	}
	return s.orderRepo.History(ctx, id)
}

func (s *OrderService) announceNewOrder(ctx context.Context, order *domain.Order) {
	staff, err := s.workspaceRepo.MemberIDs(ctx, order.WorkspaceID, domain.RoleAdmin, domain.RoleManager)
	if err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to load order recipients")
		return
	}

	realtime.PublishAll(ctx, s.push, staff, realtime.NewEvent(realtime.EventOrderNew, order))

	if s.notifications == nil || len(staff) == 0 {
		return
	}
	message := fmt.Sprintf("Order %s was placed for %s", shortID(order.ID), order.TotalAmount.StringFixed(2))
	if _, err := s.notifications.NotifyRoles(ctx, order.WorkspaceID, []domain.Role{domain.RoleAdmin, domain.RoleManager}, domain.NotificationOrderUpdate, "New order", message); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to notify staff of new order")
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, domain.NewOrderEvent(eventType, order)); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).Str("event", eventType).Msg("failed to publish order event")
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
