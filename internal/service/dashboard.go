package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentOrdersWindow = 30 * 24 * time.Hour
	previewLimit       = 5
	rankingLimit       = 5
	stockReportLimit   = 200
	defaultReportLimit = 50
	maxReportLimit     = 100
)

// DashboardService builds the aggregate views for admins, managers and staff
type DashboardService struct {
	dashboardRepo domain.DashboardRepository
	workspaceRepo domain.WorkspaceRepository
	orderRepo     domain.OrderRepository
	productRepo   domain.ProductRepository
	cache         *cache.Cache
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	dashboardRepo domain.DashboardRepository,
	workspaceRepo domain.WorkspaceRepository,
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	c *cache.Cache,
) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		workspaceRepo: workspaceRepo,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cache:         c,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Workspace returns the dashboard of one workspace. Its queries run concurrently
// and the first failure fails the whole dashboard.
func (s *DashboardService) Workspace(ctx context.Context, workspaceID uuid.UUID) (*domain.WorkspaceDashboard, error) {
	return cache.ReadThrough(ctx, s.cache, cache.WorkspaceDashboard(workspaceID), func(ctx context.Context) (*domain.WorkspaceDashboard, error) {
		return s.buildWorkspace(ctx, workspaceID)
	})
}

func (s *DashboardService) buildWorkspace(ctx context.Context, workspaceID uuid.UUID) (*domain.WorkspaceDashboard, error) {
	now := s.now()
	d := &domain.WorkspaceDashboard{}
	var (
		revenue     []domain.WorkspaceRevenue
		invitations []domain.Invitation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Workspace, err = s.workspaceRepo.GetByID(gctx, workspaceID)
		return err
	})
	g.Go(func() (err error) {
		d.TotalProducts, err = s.dashboardRepo.CountActiveProducts(gctx, workspaceID)
		return err
	})
	g.Go(func() (err error) {
		d.LowStockVariants, err = s.dashboardRepo.CountLowStockVariants(gctx, workspaceID, domain.LowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		d.TotalCategories, err = s.dashboardRepo.CountCategories(gctx, workspaceID)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrdersCount, err = s.dashboardRepo.CountOrdersSince(gctx, workspaceID, now.Add(-recentOrdersWindow))
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.dashboardRepo.RecentOrders(gctx, workspaceID, previewLimit)
		return err
	})
	g.Go(func() (err error) {
		d.PendingBills, err = s.dashboardRepo.PendingBills(gctx, workspaceID, previewLimit)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.dashboardRepo.Revenue(gctx, []uuid.UUID{workspaceID})
		return err
	})
	g.Go(func() (err error) {
		d.Team, err = s.workspaceRepo.ListMembers(gctx, workspaceID)
		return err
	})
	g.Go(func() (err error) {
		invitations, err = s.dashboardRepo.InvitationsWithStatusPending(gctx, []uuid.UUID{workspaceID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Revenue = decimal.Zero
	for _, r := range revenue {
		d.Revenue = d.Revenue.Add(r.Revenue)
	}
	pending, _ := partitionInvitations(invitations, now)
	d.PendingInvitations = len(pending)

	return d, nil
}

// Admin aggregates every workspace ownerID owns
func (s *DashboardService) Admin(ctx context.Context, ownerID uuid.UUID) (*domain.AdminDashboard, error) {
	owned, err := s.workspaceRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return nil, domain.NotFound("workspace")
	}

	ids := make([]uuid.UUID, len(owned))
	for i, ws := range owned {
		ids[i] = ws.ID
	}

	d := &domain.AdminDashboard{}
	var invitations []domain.Invitation

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.UsersByRole, err = s.dashboardRepo.UsersByRole(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		d.WorkspaceStatus, err = s.dashboardRepo.WorkspaceStatus(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		d.RevenueByWorkspace, err = s.dashboardRepo.Revenue(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		d.RevenueByMonth, err = s.dashboardRepo.RevenueByMonth(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		invitations, err = s.dashboardRepo.InvitationsWithStatusPending(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		d.TopSellingVariants, err = s.dashboardRepo.TopSellingVariants(gctx, ids, rankingLimit)
		return err
	})
	g.Go(func() (err error) {
		d.MostActiveWorkspaces, err = s.dashboardRepo.MostActiveWorkspaces(gctx, ids, rankingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.TotalRevenue = decimal.Zero
	for _, r := range d.RevenueByWorkspace {
		d.TotalRevenue = d.TotalRevenue.Add(r.Revenue)
	}
	d.PendingInvitations, d.ExpiredInvitations = partitionInvitations(invitations, s.now())

	return d, nil
}

// Staff summarises the orders assigned to staffID in a workspace
func (s *DashboardService) Staff(ctx context.Context, workspaceID, staffID uuid.UUID) (*domain.StaffDashboard, error) {
	orders, err := s.orderRepo.ListAssigned(ctx, workspaceID, staffID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	d := &domain.StaffDashboard{
		TotalOrders:    len(orders),
		Revenue:        decimal.Zero,
		AssignedOrders: make([]domain.OrderPreview, 0, len(orders)),
	}
	for _, o := range orders {
		if !o.PlacedAt.Before(today) {
			d.OrdersToday++
		}
		switch o.Status {
		case domain.OrderProcessing:
			d.Processing++
		case domain.OrderShipped:
			d.Shipped++
		case domain.OrderDelivered:
			d.Delivered++
			d.Completed++
		case domain.OrderCompleted:
			d.Completed++
		}
		if o.Status != domain.OrderCancelled {
			d.Revenue = d.Revenue.Add(o.TotalAmount)
		}
		d.AssignedOrders = append(d.AssignedOrders, domain.OrderPreview{
			ID:          o.ID,
			UserID:      o.UserID,
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
			PlacedAt:    o.PlacedAt,
		})
	}
	return d, nil
}

// Inventory returns the catalogue summary and the variants below the low
// stock threshold. The summary shares the cached product stats.
func (s *DashboardService) Inventory(ctx context.Context, workspaceID uuid.UUID) (*domain.InventoryReport, error) {
	report := &domain.InventoryReport{Threshold: domain.LowStockThreshold}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := cache.ReadThrough(gctx, s.cache, cache.ProductStats(workspaceID), func(ctx context.Context) (*domain.ProductStats, error) {
			return s.productRepo.Stats(ctx, workspaceID, domain.LowStockThreshold)
		})
		if err != nil {
			return err
		}
		report.Summary = *stats
		return nil
	})
	g.Go(func() (err error) {
		report.LowStock, err = s.dashboardRepo.StockLevels(gctx, workspaceID, domain.LowStockThreshold, stockReportLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// EmployeePerformance reports assigned orders and recorded bills per team
// member for [from, to)
func (s *DashboardService) EmployeePerformance(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) (*domain.EmployeePerformanceReport, error) {
	if !from.Before(to) {
		return nil, domain.Validation("from must be before to")
	}

	employees, err := s.dashboardRepo.EmployeePerformance(ctx, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	return &domain.EmployeePerformanceReport{From: from, To: to, Employees: employees}, nil
}

// Customers ranks the buyers of a workspace by spend in [from, to)
func (s *DashboardService) Customers(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, limit, offset int) (*domain.CustomerReport, error) {
	if !from.Before(to) {
		return nil, domain.Validation("from must be before to")
	}
	if limit == 0 {
		limit = defaultReportLimit
	}
	if limit < 1 || limit > maxReportLimit {
		return nil, domain.Validation(fmt.Sprintf("limit must be between 1 and %d", maxReportLimit))
	}
	if offset < 0 {
		return nil, domain.Validation("offset must not be negative")
	}

	customers, err := s.dashboardRepo.CustomerSummaries(ctx, workspaceID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return &domain.CustomerReport{From: from, To: to, Limit: limit, Offset: offset, Customers: customers}, nil
}

var salesHeader = []string{"order_id", "placed_at", "status", "customer", "product", "variant", "quantity", "unit_price", "line_total"}

// SalesCSV writes one row per order line placed in [from, to)
func (s *DashboardService) SalesCSV(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, w io.Writer) error {
	if !from.Before(to) {
		return domain.Validation("from must be before to")
	}

	rows, err := s.dashboardRepo.SalesRows(ctx, workspaceID, from, to)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		line := r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
		record := []string{
			r.OrderID.String(),
			r.PlacedAt.UTC().Format(time.RFC3339),
			string(r.Status),
			csvSafe(r.Customer),
			csvSafe(r.Product),
			csvSafe(r.Variant),
			strconv.Itoa(r.Quantity),
			r.UnitPrice.StringFixed(2),
			line.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvSafe prefixes free text that a spreadsheet would evaluate as a formula
func csvSafe(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// partitionInvitations splits stored PENDING rows into still pending and implicitly expired
func partitionInvitations(invitations []domain.Invitation, now time.Time) (pending, expired []domain.Invitation) {
	pending, expired = []domain.Invitation{}, []domain.Invitation{}
	for _, inv := range invitations {
		if inv.IsPending(now) {
			pending = append(pending, inv)
		} else {
			expired = append(expired, inv)
		}
	}
	return pending, expired
}
