package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CartRepository handles cart data access
type CartRepository struct {
	db *DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{db: db}
}

const cartItemSelect = `
	SELECT ci.id, ci.user_id, ci.variant_id, ci.quantity, ci.created_at, ci.updated_at,
	       v.id, v.product_id, p.name, p.slug, p.is_active, p.workspace_id,
	       v.title, v.sku, v.price, v.stock, v.is_available
	FROM cart_items ci
	INNER JOIN product_variants v ON v.id = ci.variant_id
	INNER JOIN products p ON p.id = v.product_id
`

// List returns the cart lines of a user, oldest first
func (r *CartRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := r.db.Pool.Query(ctx, cartItemSelect+` WHERE ci.user_id = $1 ORDER BY ci.created_at, ci.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// Add inserts a cart line or increases the quantity of an existing one. Cart
// writes of one user are serialised on the user row, so the single-workspace
// and stock checks see every committed line.
func (r *CartRepository) Add(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*domain.CartItem, error) {
	var item *domain.CartItem

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("user")
			}
			return fmt.Errorf("failed to lock cart owner: %w", err)
		}

		var (
			workspaceID uuid.UUID
			title       string
			stock       int
			inCart      int
		)
		err = tx.QueryRow(ctx, `
			SELECT p.workspace_id, v.title, v.stock,
			       COALESCE((SELECT ci.quantity FROM cart_items ci WHERE ci.user_id = $1 AND ci.variant_id = v.id), 0)
			FROM product_variants v
			INNER JOIN products p ON p.id = v.product_id
			WHERE v.id = $2
		`, userID, variantID).Scan(&workspaceID, &title, &stock, &inCart)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("variant")
			}
			return fmt.Errorf("failed to get variant: %w", err)
		}

		rows, err := tx.Query(ctx, `
			SELECT DISTINCT p.workspace_id
			FROM cart_items ci
			INNER JOIN product_variants v ON v.id = ci.variant_id
			INNER JOIN products p ON p.id = v.product_id
			WHERE ci.user_id = $1
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to list cart workspaces: %w", err)
		}
		workspaces, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("failed to scan cart workspaces: %w", err)
		}

		if err := checkCartAdd(workspaces, workspaceID, inCart, quantity, stock, title); err != nil {
			return err
		}

		var id uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO cart_items (id, user_id, variant_id, quantity, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			ON CONFLICT (user_id, variant_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
			RETURNING id
		`, uuid.New(), userID, variantID, quantity).Scan(&id)
		if err != nil {
			if pgCode(err) == fkViolation {
				return domain.NotFound("variant")
			}
			return fmt.Errorf("failed to add cart item: %w", err)
		}

		item, err = scanCartItem(tx.QueryRow(ctx, cartItemSelect+` WHERE ci.id = $1`, id))
		if err != nil {
			return fmt.Errorf("failed to get cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// checkCartAdd rejects a line from a second workspace and a line whose total
// quantity would exceed the variant's stock.
func checkCartAdd(cartWorkspaces []uuid.UUID, workspaceID uuid.UUID, inCart, adding, stock int, title string) error {
	if len(cartWorkspaces) > 0 && !slices.Contains(cartWorkspaces, workspaceID) {
		return domain.Validation("cart already holds items from another workspace")
	}
	if inCart+adding > stock {
		return domain.Conflict("not enough stock for " + title)
	}
	return nil
}

// SetQuantity overwrites the quantity of a cart line
func (r *CartRepository) SetQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) (bool, error) {
	query := `UPDATE cart_items SET quantity = $3, updated_at = NOW() WHERE user_id = $1 AND variant_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, userID, variantID, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Remove deletes a cart line
func (r *CartRepository) Remove(ctx context.Context, userID, variantID uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Clear empties the cart of a user
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Total sums price times quantity over the cart
func (r *CartRepository) Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(v.price * ci.quantity), 0)
		FROM cart_items ci
		INNER JOIN product_variants v ON v.id = ci.variant_id
		WHERE ci.user_id = $1
	`

	var total decimal.Decimal
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum cart: %w", err)
	}
	return total, nil
}

// UnavailableVariantIDs lists cart variants that cannot be bought as requested
func (r *CartRepository) UnavailableVariantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT ci.variant_id
		FROM cart_items ci
		INNER JOIN product_variants v ON v.id = ci.variant_id
		INNER JOIN products p ON p.id = v.product_id
		WHERE ci.user_id = $1
		  AND (NOT v.is_available OR NOT p.is_active OR v.stock < ci.quantity)
		ORDER BY ci.created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check cart availability: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cart availability: %w", err)
	}
	return ids, nil
}

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Variant.ID,
		&item.Variant.ProductID,
		&item.Variant.ProductName,
		&item.Variant.ProductSlug,
		&item.Variant.ProductActive,
		&item.Variant.WorkspaceID,
		&item.Variant.Title,
		&item.Variant.SKU,
		&item.Variant.Price,
		&item.Variant.Stock,
		&item.Variant.IsAvailable,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
