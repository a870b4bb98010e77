package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DashboardRepository runs read-only aggregate queries
type DashboardRepository struct {
	db *DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) count(ctx context.Context, what, query string, args ...any) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func (r *DashboardRepository) CountActiveProducts(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	return r.count(ctx, "products", `SELECT COUNT(*) FROM products WHERE workspace_id = $1 AND is_active`, workspaceID)
}

func (r *DashboardRepository) CountLowStockVariants(ctx context.Context, workspaceID uuid.UUID, threshold int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM product_variants v
		INNER JOIN products p ON p.id = v.product_id
		WHERE p.workspace_id = $1 AND v.stock < $2
	`
	return r.count(ctx, "low stock variants", query, workspaceID, threshold)
}

func (r *DashboardRepository) CountCategories(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	return r.count(ctx, "categories", `SELECT COUNT(*) FROM categories WHERE workspace_id = $1`, workspaceID)
}

func (r *DashboardRepository) CountOrdersSince(ctx context.Context, workspaceID uuid.UUID, since time.Time) (int, error) {
	return r.count(ctx, "orders", `SELECT COUNT(*) FROM orders WHERE workspace_id = $1 AND placed_at >= $2`, workspaceID, since)
}

// RecentOrders lists the newest orders of a workspace
func (r *DashboardRepository) RecentOrders(ctx context.Context, workspaceID uuid.UUID, limit int) ([]domain.OrderPreview, error) {
	query := `
		SELECT id, user_id, status, total_amount, placed_at
		FROM orders
		WHERE workspace_id = $1
		ORDER BY placed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return collectOrderPreviews(rows)
}

// PendingBills lists the newest unpaid bills of a workspace
func (r *DashboardRepository) PendingBills(ctx context.Context, workspaceID uuid.UUID, limit int) ([]domain.BillPreview, error) {
	query := `
		SELECT id, customer_name, total_amount, created_at
		FROM bills
		WHERE workspace_id = $1 AND status = 'PENDING'
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bills: %w", err)
	}
	defer rows.Close()

	bills := []domain.BillPreview{}
	for rows.Next() {
		var b domain.BillPreview
		if err := rows.Scan(&b.ID, &b.CustomerName, &b.TotalAmount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// InvitationsWithStatusPending returns stored PENDING rows of the workspaces,
// expired or not; callers split them by expiry.
func (r *DashboardRepository) InvitationsWithStatusPending(ctx context.Context, workspaceIDs []uuid.UUID) ([]domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE workspace_id = ANY($1) AND status = 'PENDING'
		ORDER BY expires_at
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return collectInvitations(rows)
}

// Revenue sums non-cancelled orders per workspace
func (r *DashboardRepository) Revenue(ctx context.Context, workspaceIDs []uuid.UUID) ([]domain.WorkspaceRevenue, error) {
	query := `
		SELECT w.id, w.name, COALESCE(SUM(o.total_amount) FILTER (WHERE o.status <> 'CANCELLED'), 0)
		FROM workspaces w
		LEFT JOIN orders o ON o.workspace_id = w.id
		WHERE w.id = ANY($1)
		GROUP BY w.id, w.name
		ORDER BY 3 DESC, w.name
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	defer rows.Close()

	revenue := []domain.WorkspaceRevenue{}
	for rows.Next() {
		var wr domain.WorkspaceRevenue
		if err := rows.Scan(&wr.WorkspaceID, &wr.Name, &wr.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		revenue = append(revenue, wr)
	}
	return revenue, rows.Err()
}

// RevenueByMonth sums non-cancelled orders per calendar month
func (r *DashboardRepository) RevenueByMonth(ctx context.Context, workspaceIDs []uuid.UUID) ([]domain.MonthlyRevenue, error) {
	query := `
		SELECT DATE_TRUNC('month', placed_at) AS month, SUM(total_amount)
		FROM orders
		WHERE workspace_id = ANY($1) AND status <> 'CANCELLED'
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	defer rows.Close()

	months := []domain.MonthlyRevenue{}
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan monthly revenue: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// UsersByRole counts distinct users per role across the workspaces
func (r *DashboardRepository) UsersByRole(ctx context.Context, workspaceIDs []uuid.UUID) (map[domain.Role]int, error) {
	query := `
		SELECT role, COUNT(DISTINCT user_id)
		FROM user_roles
		WHERE workspace_id = ANY($1)
		GROUP BY role
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Role]int{
		domain.RoleAdmin:    0,
		domain.RoleManager:  0,
		domain.RoleStaff:    0,
		domain.RoleCustomer: 0,
	}
	for rows.Next() {
		var role domain.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// WorkspaceStatus counts active and inactive workspaces
func (r *DashboardRepository) WorkspaceStatus(ctx context.Context, workspaceIDs []uuid.UUID) (domain.WorkspaceStatusCount, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE is_active), COUNT(*) FILTER (WHERE NOT is_active)
		FROM workspaces
		WHERE id = ANY($1)
	`

	var status domain.WorkspaceStatusCount
	if err := r.db.Pool.QueryRow(ctx, query, workspaceIDs).Scan(&status.Active, &status.Inactive); err != nil {
		return status, fmt.Errorf("failed to count workspace status: %w", err)
	}
	return status, nil
}

// TopSellingVariants ranks variants by quantity sold in non-cancelled orders
func (r *DashboardRepository) TopSellingVariants(ctx context.Context, workspaceIDs []uuid.UUID, limit int) ([]domain.VariantSales, error) {
	query := `
		SELECT v.id, p.name, v.title, SUM(oi.quantity), SUM(oi.price * oi.quantity)
		FROM order_items oi
		INNER JOIN orders o ON o.id = oi.order_id
		INNER JOIN product_variants v ON v.id = oi.variant_id
		INNER JOIN products p ON p.id = v.product_id
		WHERE o.workspace_id = ANY($1) AND o.status <> 'CANCELLED'
		GROUP BY v.id, p.name, v.title
		ORDER BY 4 DESC, p.name
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank variants: %w", err)
	}
	defer rows.Close()

	sales := []domain.VariantSales{}
	for rows.Next() {
		var s domain.VariantSales
		if err := rows.Scan(&s.VariantID, &s.ProductName, &s.Title, &s.QuantitySold, &s.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan variant sales: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// MostActiveWorkspaces ranks workspaces by order count
func (r *DashboardRepository) MostActiveWorkspaces(ctx context.Context, workspaceIDs []uuid.UUID, limit int) ([]domain.WorkspaceActivity, error) {
	query := `
		SELECT w.id, w.name, COUNT(o.id)
		FROM workspaces w
		LEFT JOIN orders o ON o.workspace_id = w.id
		WHERE w.id = ANY($1)
		GROUP BY w.id, w.name
		ORDER BY 3 DESC, w.name
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank workspaces: %w", err)
	}
	defer rows.Close()

	activity := []domain.WorkspaceActivity{}
	for rows.Next() {
		var a domain.WorkspaceActivity
		if err := rows.Scan(&a.WorkspaceID, &a.Name, &a.OrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan workspace activity: %w", err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

// SalesRows lists every order line of a workspace placed in [from, to)
func (r *DashboardRepository) SalesRows(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]domain.SalesRow, error) {
	query := `
		SELECT o.id, o.placed_at, o.status,
		       TRIM(u.first_name || ' ' || u.last_name) || ' <' || u.email || '>',
		       COALESCE(p.name, ''), oi.title, oi.quantity, oi.price
		FROM orders o
		INNER JOIN users u ON u.id = o.user_id
		INNER JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.workspace_id = $1 AND o.placed_at >= $2 AND o.placed_at < $3
		ORDER BY o.placed_at, o.id, oi.title
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.SalesRow{}
	for rows.Next() {
		var s domain.SalesRow
		if err := rows.Scan(&s.OrderID, &s.PlacedAt, &s.Status, &s.Customer, &s.Product, &s.Variant, &s.Quantity, &s.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// StockLevels lists variants of a workspace below threshold, lowest stock first
func (r *DashboardRepository) StockLevels(ctx context.Context, workspaceID uuid.UUID, threshold, limit int) ([]domain.StockLevel, error) {
	query := `
		SELECT v.id, p.id, p.name, v.title, v.sku, v.stock, v.is_available
		FROM product_variants v
		INNER JOIN products p ON p.id = v.product_id
		WHERE p.workspace_id = $1 AND v.stock < $2
		ORDER BY v.stock, p.name, v.title
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	defer rows.Close()

	levels := []domain.StockLevel{}
	for rows.Next() {
		var l domain.StockLevel
		if err := rows.Scan(&l.VariantID, &l.ProductID, &l.ProductName, &l.Title, &l.SKU, &l.Stock, &l.IsAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// EmployeePerformance aggregates assigned orders and created bills per team member
func (r *DashboardRepository) EmployeePerformance(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]domain.EmployeePerformance, error) {
	query := `
		WITH team AS (
			SELECT DISTINCT ON (ur.user_id) ur.user_id, ur.role
			FROM user_roles ur
			WHERE ur.workspace_id = $1 AND ur.role IN ('ADMIN', 'MANAGER', 'STAFF')
			ORDER BY ur.user_id, CASE ur.role WHEN 'ADMIN' THEN 1 WHEN 'MANAGER' THEN 2 ELSE 3 END
		),
		assigned AS (
			SELECT assigned_to AS user_id,
			       COUNT(*) AS assigned,
			       COUNT(*) FILTER (WHERE status IN ('DELIVERED', 'COMPLETED')) AS fulfilled,
			       COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled,
			       COALESCE(SUM(total_amount) FILTER (WHERE status <> 'CANCELLED'), 0) AS revenue
			FROM orders
			WHERE workspace_id = $1 AND assigned_to IS NOT NULL AND placed_at >= $2 AND placed_at < $3
			GROUP BY assigned_to
		),
		billed AS (
			SELECT created_by AS user_id,
			       COUNT(*) AS bills,
			       COALESCE(SUM(total_amount) FILTER (WHERE status = 'PAID'), 0) AS revenue
			FROM bills
			WHERE workspace_id = $1 AND created_at >= $2 AND created_at < $3
			GROUP BY created_by
		)
		SELECT u.id, TRIM(u.first_name || ' ' || u.last_name), u.email, t.role,
		       COALESCE(a.assigned, 0), COALESCE(a.fulfilled, 0), COALESCE(a.cancelled, 0), COALESCE(a.revenue, 0),
		       COALESCE(b.bills, 0), COALESCE(b.revenue, 0)
		FROM team t
		INNER JOIN users u ON u.id = t.user_id
		LEFT JOIN assigned a ON a.user_id = t.user_id
		LEFT JOIN billed b ON b.user_id = t.user_id
		ORDER BY COALESCE(a.fulfilled, 0) DESC, COALESCE(b.revenue, 0) DESC, u.email
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate employee performance: %w", err)
	}
	defer rows.Close()

	employees := []domain.EmployeePerformance{}
	for rows.Next() {
		var e domain.EmployeePerformance
		err := rows.Scan(
			&e.UserID, &e.Name, &e.Email, &e.Role,
			&e.AssignedOrders, &e.FulfilledOrders, &e.CancelledOrders, &e.OrderRevenue,
			&e.BillsCreated, &e.BillRevenue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee performance: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// CustomerSummaries ranks the buyers of a workspace by spend on non-cancelled orders
func (r *DashboardRepository) CustomerSummaries(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, limit, offset int) ([]domain.CustomerSummary, error) {
	query := `
		SELECT u.id, TRIM(u.first_name || ' ' || u.last_name), u.email,
		       COUNT(o.id), COALESCE(SUM(o.total_amount), 0), MAX(o.placed_at)
		FROM orders o
		INNER JOIN users u ON u.id = o.user_id
		WHERE o.workspace_id = $1 AND o.status <> 'CANCELLED' AND o.placed_at >= $2 AND o.placed_at < $3
		GROUP BY u.id, u.first_name, u.last_name, u.email
		ORDER BY 5 DESC, u.email
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.CustomerSummary{}
	for rows.Next() {
		var c domain.CustomerSummary
		if err := rows.Scan(&c.UserID, &c.Name, &c.Email, &c.OrderCount, &c.TotalSpent, &c.LastOrderAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer summary: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func collectOrderPreviews(rows pgx.Rows) ([]domain.OrderPreview, error) {
	defer rows.Close()

	orders := []domain.OrderPreview{}
	for rows.Next() {
		var o domain.OrderPreview
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
