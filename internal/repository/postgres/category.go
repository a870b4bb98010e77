package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryRepository handles category data access
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, workspace_id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		category.ID,
		category.WorkspaceID,
		category.Name,
		category.Slug,
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("category name or slug already exists")
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByID retrieves a category of a workspace with its product count
func (r *CategoryRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT c.id, c.workspace_id, c.name, c.slug, c.description,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id),
		       c.created_at, c.updated_at
		FROM categories c
		WHERE c.id = $1 AND c.workspace_id = $2
	`

	category, err := scanCategory(r.db.Pool.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("category")
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// ListByWorkspace lists the categories of a workspace ordered by name
func (r *CategoryRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Category, error) {
	query := `
		SELECT c.id, c.workspace_id, c.name, c.slug, c.description,
		       COUNT(p.id),
		       c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		WHERE c.workspace_id = $1
		GROUP BY c.id
		ORDER BY c.name
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	return categories, rows.Err()
}

// NameExists checks for a category with the same name, ignoring case
func (r *CategoryRepository) NameExists(ctx context.Context, workspaceID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM categories
			WHERE workspace_id = $1 AND LOWER(name) = LOWER($2) AND id <> $3
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, workspaceID, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return exists, nil
}

// SlugExists checks if a category slug is taken in a workspace
func (r *CategoryRepository) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE workspace_id = $1 AND slug = $2 AND id <> $3)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, workspaceID, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return exists, nil
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $3, slug = $4, description = $5, updated_at = $6
		WHERE id = $1 AND workspace_id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		category.ID,
		category.WorkspaceID,
		category.Name,
		category.Slug,
		category.Description,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("category name or slug already exists")
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("category")
	}

	return nil
}

// Delete deletes a category; categories with products are rejected
func (r *CategoryRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		if pgCode(err) == fkViolation {
			return domain.Conflict("category still has products")
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("category")
	}
	return nil
}

// CountProducts counts the products linked to a category
func (r *CategoryRepository) CountProducts(ctx context.Context, workspaceID, id uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE workspace_id = $1 AND category_id = $2`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, workspaceID, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.WorkspaceID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.ProductCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
