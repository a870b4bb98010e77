package service

import (
	"context"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/realtime"
	"github.com/Rrens/storefront/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OrderEventPublisher publishes order integration events
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

// Repositories groups the data access dependencies of the services
type Repositories struct {
	Users         domain.UserRepository
	Workspaces    domain.WorkspaceRepository
	Invitations   domain.InvitationRepository
	Categories    domain.CategoryRepository
	Products      domain.ProductRepository
	Carts         domain.CartRepository
	Orders        domain.OrderRepository
	Bills         domain.BillRepository
	Notifications domain.NotificationRepository
	Dashboards    domain.DashboardRepository
}

// Options tunes service behaviour
type Options struct {
	InvitationTTL time.Duration
}

// Services is the application layer used by the HTTP handlers
type Services struct {
	Auth          *AuthService
	Workspaces    *WorkspaceService
	Invitations   *InvitationService
	Categories    *CategoryService
	Products      *ProductService
	Cart          *CartService
	Orders        *OrderService
	Bills         *BillService
	Notifications *NotificationService
	Dashboard     *DashboardService
}

// New wires every service. push and events may be nil.
func New(repos Repositories, c *cache.Cache, jwt *security.JWTManager, push realtime.Publisher, events OrderEventPublisher, opts Options) *Services {
	if push == nil {
		push = realtime.Discard{}
	}

	notifications := NewNotificationService(repos.Notifications, repos.Workspaces, c, push)

	return &Services{
		Auth:          NewAuthService(repos.Users, repos.Workspaces, jwt),
		Workspaces:    NewWorkspaceService(repos.Workspaces, c),
		Invitations:   NewInvitationService(repos.Invitations, repos.Workspaces, repos.Users, notifications, c, opts.InvitationTTL),
		Categories:    NewCategoryService(repos.Categories, c),
		Products:      NewProductService(repos.Products, repos.Categories, notifications, c),
		Cart:          NewCartService(repos.Carts, repos.Products),
		Orders:        NewOrderService(repos.Orders, repos.Carts, repos.Workspaces, notifications, c, push, events),
		Bills:         NewBillService(repos.Bills, repos.Products, c),
		Notifications: notifications,
		Dashboard:     NewDashboardService(repos.Dashboards, repos.Workspaces, repos.Orders, repos.Products, c),
	}
}

// actorLists are the workspace list keys of one user
func actorLists(userID uuid.UUID) []cache.Target {
	return []cache.Target{
		cache.UserWorkspaces(userID),
		cache.AdminWorkspaces(userID),
	}
}

// catalogTargets are the workspace keys any catalogue write can stale
func catalogTargets(workspaceID uuid.UUID) []cache.Target {
	return []cache.Target{
		cache.WorkspaceCategories(workspaceID),
		cache.WorkspaceProducts(workspaceID),
		cache.ProductStats(workspaceID),
		cache.WorkspaceDashboard(workspaceID),
	}
}

// memberTargets returns list and role keys of every member of a workspace.
// A lookup failure is logged and yields no keys.
func memberTargets(ctx context.Context, repo domain.WorkspaceRepository, workspaceID uuid.UUID, withRoles bool) []cache.Target {
	ids, err := repo.MemberIDs(ctx, workspaceID)
	if err != nil {
		log.Warn().Err(err).Str("workspace_id", workspaceID.String()).Msg("failed to load members for cache invalidation")
		return nil
	}

	targets := make([]cache.Target, 0, len(ids)*3)
	for _, id := range ids {
		targets = append(targets, actorLists(id)...)
		if withRoles {
			targets = append(targets, cache.UserRoles(id))
		}
	}
	return targets
}
