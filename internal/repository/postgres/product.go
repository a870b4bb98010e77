package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository handles product and variant data access. Every variant
// write applies the stock invariant before touching the table.
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const (
	productColumns = `id, workspace_id, category_id, name, slug, description, images, is_active, created_at, updated_at`
	variantColumns = `id, product_id, title, sku, price, stock, color, size, is_available, created_at, updated_at`
)

// Create creates a product with its variants
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO products (` + productColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		_, err := tx.Exec(ctx, query,
			product.ID,
			product.WorkspaceID,
			product.CategoryID,
			product.Name,
			product.Slug,
			product.Description,
			product.Images,
			product.IsActive,
			product.CreatedAt,
			product.UpdatedAt,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.Conflict("product slug already exists")
			case pgCode(err) == fkViolation:
				return domain.NotFound("category")
			}
			return fmt.Errorf("failed to create product: %w", err)
		}

		for i := range product.Variants {
			if err := insertVariant(ctx, tx, &product.Variants[i]); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID retrieves a product of a workspace with its variants
func (r *ProductRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND workspace_id = $2`
	return r.getOne(ctx, query, id, workspaceID)
}

// GetBySlug retrieves a product of a workspace by slug
func (r *ProductRepository) GetBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE workspace_id = $1 AND slug = $2`
	return r.getOne(ctx, query, workspaceID, slug)
}

// List returns one page of the catalogue, newest first
func (r *ProductRepository) List(ctx context.Context, workspaceID uuid.UUID, page, pageSize int) (*domain.ProductPage, error) {
	result := &domain.ProductPage{Items: []domain.Product{}, Page: page, PageSize: pageSize}

	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE workspace_id = $1`, workspaceID).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE workspace_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result.Items = append(result.Items, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if len(ids) == 0 {
		return result, nil
	}

	variants, err := r.variantsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result.Items {
		result.Items[i].Variants = variants[result.Items[i].ID]
		if result.Items[i].Variants == nil {
			result.Items[i].Variants = []domain.ProductVariant{}
		}
	}

	return result, nil
}

// SlugExists checks if a product slug is taken in a workspace
func (r *ProductRepository) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE workspace_id = $1 AND slug = $2 AND id <> $3)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, workspaceID, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return exists, nil
}

// Update updates the product row; variants are managed separately
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET category_id = $3, name = $4, slug = $5, description = $6, images = $7, updated_at = $8
		WHERE id = $1 AND workspace_id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		product.ID,
		product.WorkspaceID,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.Images,
		product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.Conflict("product slug already exists")
		case pgCode(err) == fkViolation:
			return domain.NotFound("category")
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("product")
	}

	return nil
}

// SetActive toggles the active flag of a product
func (r *ProductRepository) SetActive(ctx context.Context, workspaceID, id uuid.UUID, active bool) error {
	query := `UPDATE products SET is_active = $3, updated_at = NOW() WHERE id = $1 AND workspace_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, workspaceID, active)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("product")
	}
	return nil
}

// Delete deletes a product and its variants
func (r *ProductRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("product")
	}
	return nil
}

// Stats aggregates catalogue figures for a workspace
func (r *ProductRepository) Stats(ctx context.Context, workspaceID uuid.UUID, lowStock int) (*domain.ProductStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE workspace_id = $1),
			(SELECT COUNT(*) FROM products WHERE workspace_id = $1 AND is_active),
			COUNT(v.id),
			COUNT(v.id) FILTER (WHERE v.stock = 0),
			COUNT(v.id) FILTER (WHERE v.stock > 0 AND v.stock < $2),
			COALESCE(SUM(v.price * v.stock), 0)
		FROM product_variants v
		INNER JOIN products p ON p.id = v.product_id
		WHERE p.workspace_id = $1
	`

	var stats domain.ProductStats
	err := r.db.Pool.QueryRow(ctx, query, workspaceID, lowStock).Scan(
		&stats.TotalProducts,
		&stats.ActiveProducts,
		&stats.TotalVariants,
		&stats.OutOfStockVariants,
		&stats.LowStockVariants,
		&stats.InventoryValue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get product stats: %w", err)
	}
	stats.InactiveProducts = stats.TotalProducts - stats.ActiveProducts

	return &stats, nil
}

// ListVariants lists the variants of a product
func (r *ProductRepository) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	variants, err := r.variantsFor(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if variants[productID] == nil {
		return []domain.ProductVariant{}, nil
	}
	return variants[productID], nil
}

// GetVariant retrieves one variant of a product
func (r *ProductRepository) GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*domain.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 AND product_id = $2`

	v, err := scanVariant(r.db.Pool.QueryRow(ctx, query, variantID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("variant")
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return v, nil
}

// GetVariantRef retrieves a variant joined with its product
func (r *ProductRepository) GetVariantRef(ctx context.Context, variantID uuid.UUID) (*domain.VariantRef, error) {
	query := `
		SELECT v.id, v.product_id, p.name, p.slug, p.is_active, p.workspace_id,
		       v.title, v.sku, v.price, v.stock, v.is_available
		FROM product_variants v
		INNER JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`

	var ref domain.VariantRef
	err := r.db.Pool.QueryRow(ctx, query, variantID).Scan(
		&ref.ID,
		&ref.ProductID,
		&ref.ProductName,
		&ref.ProductSlug,
		&ref.ProductActive,
		&ref.WorkspaceID,
		&ref.Title,
		&ref.SKU,
		&ref.Price,
		&ref.Stock,
		&ref.IsAvailable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("variant")
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return &ref, nil
}

// CreateVariant adds a variant to an existing product
func (r *ProductRepository) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		return insertVariant(ctx, tx, variant)
	})
}

// UpdateVariant overwrites a variant
func (r *ProductRepository) UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	variant.ApplyStockInvariant()

	query := `
		UPDATE product_variants
		SET title = $3, sku = $4, price = $5, stock = $6, color = $7, size = $8, is_available = $9, updated_at = $10
		WHERE id = $1 AND product_id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		variant.ID,
		variant.ProductID,
		variant.Title,
		variant.SKU,
		variant.Price,
		variant.Stock,
		variant.Color,
		variant.Size,
		variant.IsAvailable,
		variant.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == checkViolation {
			return domain.Validation("variant stock and availability are inconsistent")
		}
		return fmt.Errorf("failed to update variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("variant")
	}
	return nil
}

// DeleteVariant deletes a variant of a product
func (r *ProductRepository) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	query := `DELETE FROM product_variants WHERE id = $1 AND product_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, variantID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("variant")
	}
	return nil
}

func (r *ProductRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	p, err := scanProduct(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("product")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	p.Variants, err = r.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) variantsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]domain.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY created_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[uuid.UUID][]domain.ProductVariant, len(productIDs))
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		byProduct[v.ProductID] = append(byProduct[v.ProductID], *v)
	}

	return byProduct, rows.Err()
}

func insertVariant(ctx context.Context, tx pgx.Tx, variant *domain.ProductVariant) error {
	variant.ApplyStockInvariant()

	query := `
		INSERT INTO product_variants (` + variantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		variant.ID,
		variant.ProductID,
		variant.Title,
		variant.SKU,
		variant.Price,
		variant.Stock,
		variant.Color,
		variant.Size,
		variant.IsAvailable,
		variant.CreatedAt,
		variant.UpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case checkViolation:
			return domain.Validation("variant price and stock must not be negative")
		case fkViolation:
			return domain.NotFound("product")
		}
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Images,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

func scanVariant(row pgx.Row) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Title,
		&v.SKU,
		&v.Price,
		&v.Stock,
		&v.Color,
		&v.Size,
		&v.IsAvailable,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
