package api

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/handler"
	customMiddleware "github.com/Rrens/storefront/internal/api/middleware"
	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/config"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/metrics"
	"github.com/Rrens/storefront/internal/realtime"
	"github.com/Rrens/storefront/internal/security"
	"github.com/Rrens/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies are the components the router wires into handlers
type Dependencies struct {
	Services *service.Services
	JWT      *security.JWTManager
	Cache    *cache.Cache
	Hub      *realtime.Hub
	// Limiter is optional; requests are not limited when nil
	Limiter  customMiddleware.Limiter
	Pingers  map[string]handler.Pinger
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

const (
	admin    = domain.RoleAdmin
	manager  = domain.RoleManager
	staff    = domain.RoleStaff
	customer = domain.RoleCustomer
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if deps.Metrics != nil {
		r.Use(customMiddleware.Logger(deps.Metrics))
	} else {
		r.Use(customMiddleware.Logger(nil))
	}
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	svc := deps.Services

	// Initialize handlers
	authHandler := handler.NewAuthHandler(svc.Auth)
	workspaceHandler := handler.NewWorkspaceHandler(svc.Workspaces, svc.Dashboard)
	invitationHandler := handler.NewInvitationHandler(svc.Invitations)
	categoryHandler := handler.NewCategoryHandler(svc.Categories)
	productHandler := handler.NewProductHandler(svc.Products)
	cartHandler := handler.NewCartHandler(svc.Cart)
	orderHandler := handler.NewOrderHandler(svc.Orders)
	billHandler := handler.NewBillHandler(svc.Bills)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)
	streamHandler := handler.NewStreamHandler(deps.Hub, cfg.Realtime.Heartbeat)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWT)
	gate := customMiddleware.NewGate(svc.Workspaces)
	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limit = customMiddleware.NewRateLimitMiddleware(deps.Limiter).Limit
	}

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Handle(cfg.Metrics.Path, metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// the stream outlives any request timeout
		r.With(authMiddleware.AuthenticateStream).Get("/stream", streamHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

			// Health check
			r.Get("/health", handler.HealthCheck)
			r.Get("/ready", handler.ReadyCheck(deps.Pingers))

			// Auth routes (public)
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Use(limit)

				r.Get("/auth/me", authHandler.Me)

				// Cache management
				r.With(gate.RequireAny(admin)).Post("/admin/cache/flush", handler.FlushCache(deps.Cache))

				r.Post("/invitations/accept", invitationHandler.Accept)

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", cartHandler.Items)
					r.Delete("/", cartHandler.Clear)
					r.Get("/summary", cartHandler.Summary)
					r.Post("/items", cartHandler.Add)
					r.Put("/items/{variantID}", cartHandler.UpdateQuantity)
					r.Delete("/items/{variantID}", cartHandler.Remove)
				})

				r.Post("/orders/checkout", orderHandler.Checkout)
				r.Get("/orders/mine", orderHandler.Mine)

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", notificationHandler.List)
					r.Get("/unread-count", notificationHandler.UnreadCount)
					r.Patch("/read-all", notificationHandler.MarkAllRead)
					r.Post("/bulk-delete", notificationHandler.BulkDelete)
					r.Patch("/{notificationID}/read", notificationHandler.MarkRead)
					r.Delete("/{notificationID}", notificationHandler.Delete)
				})

				// Workspace routes
				r.Route("/workspaces", func(r chi.Router) {
					r.Get("/", workspaceHandler.List)
					r.Post("/", workspaceHandler.Create)
					r.Get("/admin", workspaceHandler.ListOwned)
					r.Get("/admin/dashboard", workspaceHandler.AdminDashboard)

					r.Route("/{workspaceID}", func(r chi.Router) {
						r.Post("/join", workspaceHandler.Join)

						r.With(gate.Require(admin, manager, staff, customer)).Get("/", workspaceHandler.Get)
						r.With(gate.Require(admin)).Put("/", workspaceHandler.Update)
						r.With(gate.Require(admin)).Patch("/status", workspaceHandler.ToggleStatus)
						r.With(gate.Require(admin)).Delete("/", workspaceHandler.Delete)

						r.With(gate.Require(admin, manager)).Get("/members", workspaceHandler.Members)
						r.With(gate.Require(admin)).Delete("/members/{userID}", workspaceHandler.RemoveMember)

						r.With(gate.Require(admin, manager)).Get("/dashboard", workspaceHandler.Dashboard)
						r.With(gate.Require(staff)).Get("/staff/dashboard", workspaceHandler.StaffDashboard)
						r.With(gate.Require(admin, manager)).Get("/reports/sales.csv", workspaceHandler.SalesReport)
						r.With(gate.Require(admin, manager)).Get("/reports/inventory", workspaceHandler.InventoryReport)
						r.With(gate.Require(admin, manager)).Get("/reports/employee-performance", workspaceHandler.EmployeePerformanceReport)
						r.With(gate.Require(admin, manager)).Get("/reports/customer", workspaceHandler.CustomerReport)

						r.With(gate.Require(admin, manager)).Post("/notifications", notificationHandler.Send)

						r.Route("/invitations", func(r chi.Router) {
							r.With(gate.Require(admin, manager)).Get("/", invitationHandler.List)
							r.With(gate.Require(admin, manager)).Post("/", invitationHandler.Create)
							r.With(gate.Require(admin)).Patch("/{invitationID}/status", invitationHandler.UpdateStatus)
						})

						r.Route("/categories", func(r chi.Router) {
							r.With(gate.Require(admin, manager, staff, customer)).Get("/", categoryHandler.List)
							r.With(gate.Require(admin, manager)).Post("/", categoryHandler.Create)
							r.With(gate.Require(admin, manager, staff, customer)).Get("/{categoryID}", categoryHandler.Get)
							r.With(gate.Require(admin, manager)).Put("/{categoryID}", categoryHandler.Update)
							r.With(gate.Require(admin, manager)).Delete("/{categoryID}", categoryHandler.Delete)
						})

						r.Route("/products", func(r chi.Router) {
							r.With(gate.Require(admin, manager, staff, customer)).Get("/", productHandler.List)
							r.With(gate.Require(admin, manager)).Post("/", productHandler.Create)
							r.With(gate.Require(admin, manager)).Get("/stats", productHandler.Stats)
							r.With(gate.Require(admin, manager)).Get("/check-slug/{slug}", productHandler.CheckSlug)
							r.With(gate.Require(admin, manager, staff, customer)).Get("/slug/{slug}", productHandler.GetBySlug)

							r.Route("/{productID}", func(r chi.Router) {
								r.With(gate.Require(admin, manager, staff, customer)).Get("/", productHandler.Get)
								r.With(gate.Require(admin, manager)).Put("/", productHandler.Update)
								r.With(gate.Require(admin, manager)).Delete("/", productHandler.Delete)
								r.With(gate.Require(admin)).Patch("/status", productHandler.ToggleStatus)

								r.With(gate.Require(admin, manager, staff, customer)).Get("/variants", productHandler.Variants)
								r.With(gate.Require(admin, manager)).Post("/variants", productHandler.AddVariant)
								r.With(gate.Require(admin, manager)).Put("/variants/{variantID}", productHandler.UpdateVariant)
								r.With(gate.Require(admin, manager)).Delete("/variants/{variantID}", productHandler.DeleteVariant)
							})
						})

						r.Route("/orders", func(r chi.Router) {
							r.Use(gate.Require(admin, manager, staff))

							r.Get("/", orderHandler.List)
							r.Get("/{orderID}", orderHandler.Get)
							r.Patch("/{orderID}/status", orderHandler.UpdateStatus)
							r.Get("/{orderID}/history", orderHandler.History)
							r.Delete("/{orderID}/assign", orderHandler.Unassign)
							r.With(gate.Require(admin, manager)).Post("/{orderID}/assign", orderHandler.Assign)
						})

						r.Route("/bills", func(r chi.Router) {
							r.With(gate.Require(admin, manager, staff)).Post("/", billHandler.Create)
							r.With(gate.Require(admin, manager)).Get("/", billHandler.List)
							r.With(gate.Require(admin, manager, staff)).Get("/{billID}", billHandler.Get)
							r.With(gate.Require(admin, manager)).Patch("/{billID}/status", billHandler.UpdateStatus)
							r.With(gate.Require(admin, manager)).Put("/{billID}", billHandler.Update)
							r.With(gate.Require(admin)).Delete("/{billID}", billHandler.Delete)
							r.With(gate.Require(admin, manager, staff)).Get("/users/{userID}", billHandler.ByCreator)

							r.With(gate.Require(admin, manager, staff)).Get("/{billID}/items", billHandler.Items)
							r.With(gate.Require(admin, manager)).Post("/{billID}/items", billHandler.AddItem)
							r.With(gate.Require(admin, manager)).Put("/{billID}/items/{itemID}", billHandler.UpdateItem)
							r.With(gate.Require(admin, manager)).Delete("/{billID}/items/{itemID}", billHandler.DeleteItem)
						})
					})
				})
			})
		})
	})

	return r
}
