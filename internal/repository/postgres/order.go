package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository handles order data access
type OrderRepository struct {
	db *DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, workspace_id, user_id, status, total_amount, assigned_to, note, placed_at, updated_at`

// Place decrements stock for every line, stores the order with its first
// history row and clears the buyer's cart. Any line without enough stock
// aborts the whole transaction.
func (r *OrderRepository) Place(ctx context.Context, order *domain.Order) ([]domain.StockChange, error) {
	changes := make([]domain.StockChange, 0, len(order.Items))

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		for _, item := range order.Items {
			if item.VariantID == nil {
				return domain.Validation("order line without variant")
			}

			change := domain.StockChange{VariantID: *item.VariantID}
			err := tx.QueryRow(ctx, `
				UPDATE product_variants
				SET stock = stock - $2,
				    is_available = CASE WHEN stock - $2 > 0 THEN is_available ELSE FALSE END,
				    updated_at = NOW()
				WHERE id = $1 AND is_available AND stock >= $2
				RETURNING product_id, title, stock
			`, *item.VariantID, item.Quantity).Scan(&change.ProductID, &change.Title, &change.Stock)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domain.Conflict(fmt.Sprintf("insufficient stock for %s", item.Title))
				}
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
			changes = append(changes, change)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			order.ID,
			order.WorkspaceID,
			order.UserID,
			order.Status,
			order.TotalAmount,
			order.AssignedTo,
			order.Note,
			order.PlacedAt,
			order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, variant_id, product_id, title, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, item.ID, order.ID, item.VariantID, item.ProductID, item.Title, item.Quantity, item.Price)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		if err := insertHistory(ctx, tx, order.ID, order.Status, order.Note, order.UserID, order.PlacedAt); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// GetByID retrieves an order of a workspace with its lines
func (r *OrderRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND workspace_id = $2`

	order, err := scanOrder(r.db.Pool.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = orEmpty(items[order.ID])

	return order, nil
}

// ListByWorkspace lists the orders of a workspace, newest first
func (r *OrderRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, filter domain.OrderFilter) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE workspace_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY placed_at DESC, id
		LIMIT $3 OFFSET $4
	`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	return r.list(ctx, query, workspaceID, status, filter.Limit, filter.Offset)
}

// ListByUser lists the orders a user placed, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY placed_at DESC, id`
	return r.list(ctx, query, userID)
}

// ListAssigned lists the orders of a workspace assigned to a staff member
func (r *OrderRepository) ListAssigned(ctx context.Context, workspaceID, staffID uuid.UUID) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE workspace_id = $1 AND assigned_to = $2
		ORDER BY placed_at DESC, id
	`
	return r.list(ctx, query, workspaceID, staffID)
}

// UpdateStatus moves the order to a new status and appends history. The
// update only applies while the stored status still matches order.Status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, to domain.OrderStatus, note string, changedBy uuid.UUID, restock bool) error {
	now := time.Now().UTC()

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET status = $3, updated_at = $4
			WHERE id = $1 AND status = $2
		`, order.ID, order.Status, to, now)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.Conflict("order status changed concurrently")
		}

		if restock {
			_, err := tx.Exec(ctx, `
				UPDATE product_variants v
				SET stock = v.stock + oi.quantity,
				    is_available = CASE WHEN v.stock = 0 THEN TRUE ELSE v.is_available END,
				    updated_at = $2
				FROM order_items oi
				WHERE oi.order_id = $1 AND oi.variant_id = v.id
			`, order.ID, now)
			if err != nil {
				return fmt.Errorf("failed to restock order: %w", err)
			}
		}

		return insertHistory(ctx, tx, order.ID, to, note, changedBy, now)
	})
	if err != nil {
		return err
	}

	order.Status = to
	order.UpdatedAt = now
	return nil
}

// SetAssignee sets or clears the staff member handling the order
func (r *OrderRepository) SetAssignee(ctx context.Context, order *domain.Order, assignee *uuid.UUID, note string, changedBy uuid.UUID) error {
	now := time.Now().UTC()

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE orders SET assigned_to = $2, updated_at = $3 WHERE id = $1`, order.ID, assignee, now)
		if err != nil {
			return fmt.Errorf("failed to assign order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("order")
		}

		return insertHistory(ctx, tx, order.ID, order.Status, note, changedBy, now)
	})
	if err != nil {
		return err
	}

	order.AssignedTo = assignee
	order.UpdatedAt = now
	return nil
}

// History lists the status history of an order, oldest first
func (r *OrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]domain.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, status, note, changed_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order history: %w", err)
	}
	defer rows.Close()

	history := []domain.OrderStatusHistory{}
	for rows.Next() {
		var h domain.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	ids := []uuid.UUID{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = orEmpty(items[orders[i].ID])
	}

	return orders, nil
}

func (r *OrderRepository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, variant_id, product_id, title, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY title, id
	`

	rows, err := r.db.Pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[uuid.UUID][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.ProductID, &item.Title, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	return byOrder, rows.Err()
}

func insertHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status domain.OrderStatus, note string, changedBy uuid.UUID, at time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, note, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), orderID, status, note, changedBy, at)
	if err != nil {
		return fmt.Errorf("failed to append order history: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.WorkspaceID,
		&o.UserID,
		&o.Status,
		&o.TotalAmount,
		&o.AssignedTo,
		&o.Note,
		&o.PlacedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
