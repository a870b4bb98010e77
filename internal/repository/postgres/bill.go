package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillRepository handles in-store bill data access
type BillRepository struct {
	db *DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *DB) *BillRepository {
	return &BillRepository{db: db}
}

const billColumns = `id, workspace_id, created_by, customer_name, status, total_amount, created_at, updated_at`

// Create stores a bill with its lines
func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO bills (`+billColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			bill.ID,
			bill.WorkspaceID,
			bill.CreatedBy,
			bill.CustomerName,
			bill.Status,
			bill.TotalAmount,
			bill.CreatedAt,
			bill.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create bill: %w", err)
		}

		for _, item := range bill.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO bill_items (id, bill_id, variant_id, title, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, bill.ID, item.VariantID, item.Title, item.Quantity, item.Price)
			if err != nil {
				return fmt.Errorf("failed to create bill item: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a bill of a workspace with its lines
func (r *BillRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1 AND workspace_id = $2`

	bill, err := scanBill(r.db.Pool.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("bill")
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{bill.ID})
	if err != nil {
		return nil, err
	}
	bill.Items = orEmpty(items[bill.ID])

	return bill, nil
}

// ListByWorkspace lists the bills of a workspace, newest first
func (r *BillRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE workspace_id = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, query, workspaceID)
}

// ListByCreator lists the bills a user recorded in a workspace, newest first
func (r *BillRepository) ListByCreator(ctx context.Context, workspaceID, userID uuid.UUID) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE workspace_id = $1 AND created_by = $2 ORDER BY created_at DESC, id`
	return r.list(ctx, query, workspaceID, userID)
}

func (r *BillRepository) list(ctx context.Context, query string, args ...any) ([]domain.Bill, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	ids := []uuid.UUID{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
		ids = append(ids, bill.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	if len(ids) == 0 {
		return bills, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Items = orEmpty(items[bills[i].ID])
	}

	return bills, nil
}

// UpdateStatus moves a bill from one status to another
func (r *BillRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, from, to domain.BillStatus) (bool, error) {
	query := `
		UPDATE bills SET status = $4, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND status = $3
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, workspaceID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update bill status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete deletes a bill and its lines
func (r *BillRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM bills WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("bill")
	}
	return nil
}

// UpdateCustomer renames the customer of a PENDING bill
func (r *BillRepository) UpdateCustomer(ctx context.Context, workspaceID, id uuid.UUID, customerName string) (bool, error) {
	query := `
		UPDATE bills SET customer_name = $3, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND status = 'PENDING'
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, workspaceID, customerName)
	if err != nil {
		return false, fmt.Errorf("failed to update bill: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AddItem adds a line to a PENDING bill. A variant already on the bill has
// its line quantity raised instead.
func (r *BillRepository) AddItem(ctx context.Context, workspaceID uuid.UUID, item domain.BillItem) error {
	return r.editPending(ctx, workspaceID, item.BillID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bill_items SET quantity = quantity + $3
			WHERE bill_id = $1 AND variant_id = $2
		`, item.BillID, item.VariantID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to update bill item: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bill_items (id, bill_id, variant_id, title, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.BillID, item.VariantID, item.Title, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to create bill item: %w", err)
		}
		return nil
	})
}

// UpdateItemQuantity sets the quantity of one line of a PENDING bill
func (r *BillRepository) UpdateItemQuantity(ctx context.Context, workspaceID, billID, itemID uuid.UUID, quantity int) error {
	return r.editPending(ctx, workspaceID, billID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE bill_items SET quantity = $3 WHERE id = $1 AND bill_id = $2`, itemID, billID, quantity)
		if err != nil {
			return fmt.Errorf("failed to update bill item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("bill item")
		}
		return nil
	})
}

// DeleteItem removes one line of a PENDING bill. The last line cannot be removed.
func (r *BillRepository) DeleteItem(ctx context.Context, workspaceID, billID, itemID uuid.UUID) error {
	return r.editPending(ctx, workspaceID, billID, func(tx pgx.Tx) error {
		var lines int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM bill_items WHERE bill_id = $1`, billID).Scan(&lines); err != nil {
			return fmt.Errorf("failed to count bill items: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM bill_items WHERE id = $1 AND bill_id = $2`, itemID, billID)
		if err != nil {
			return fmt.Errorf("failed to delete bill item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("bill item")
		}
		if lines <= 1 {
			return domain.Conflict("a bill needs at least one item")
		}
		return nil
	})
}

// editPending locks a PENDING bill, runs edit and recomputes the bill total
func (r *BillRepository) editPending(ctx context.Context, workspaceID, billID uuid.UUID, edit func(pgx.Tx) error) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		var status domain.BillStatus
		err := tx.QueryRow(ctx, `
			SELECT status FROM bills WHERE id = $1 AND workspace_id = $2 FOR UPDATE
		`, billID, workspaceID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("bill")
			}
			return fmt.Errorf("failed to lock bill: %w", err)
		}
		if status != domain.BillPending {
			return domain.Conflict("only pending bills can be edited")
		}

		if err := edit(tx); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE bills
			SET total_amount = (SELECT COALESCE(SUM(price * quantity), 0) FROM bill_items WHERE bill_id = $1),
			    updated_at = NOW()
			WHERE id = $1
		`, billID)
		if err != nil {
			return fmt.Errorf("failed to update bill total: %w", err)
		}
		return nil
	})
}

func (r *BillRepository) itemsFor(ctx context.Context, billIDs []uuid.UUID) (map[uuid.UUID][]domain.BillItem, error) {
	query := `
		SELECT id, bill_id, variant_id, title, quantity, price
		FROM bill_items
		WHERE bill_id = ANY($1)
		ORDER BY title, id
	`

	rows, err := r.db.Pool.Query(ctx, query, billIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill items: %w", err)
	}
	defer rows.Close()

	byBill := make(map[uuid.UUID][]domain.BillItem, len(billIDs))
	for rows.Next() {
		var item domain.BillItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.VariantID, &item.Title, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		byBill[item.BillID] = append(byBill[item.BillID], item)
	}

	return byBill, rows.Err()
}

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var b domain.Bill
	err := row.Scan(
		&b.ID,
		&b.WorkspaceID,
		&b.CreatedBy,
		&b.CustomerName,
		&b.Status,
		&b.TotalAmount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
