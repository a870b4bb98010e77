package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
)

// CategoryService handles catalogue categories
type CategoryService struct {
	categoryRepo domain.CategoryRepository
	cache        *cache.Cache
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo domain.CategoryRepository, c *cache.Cache) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, cache: c}
}

// List lists the categories of a workspace ordered by name
func (s *CategoryService) List(ctx context.Context, workspaceID uuid.UUID) ([]domain.Category, error) {
	return cache.ReadThrough(ctx, s.cache, cache.WorkspaceCategories(workspaceID), func(ctx context.Context) ([]domain.Category, error) {
		return s.categoryRepo.ListByWorkspace(ctx, workspaceID)
	})
}

// Get retrieves one category
func (s *CategoryService) Get(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, workspaceID, id)
}

// Create creates a category with a name unique in the workspace
func (s *CategoryService) Create(ctx context.Context, actorID, workspaceID uuid.UUID, input domain.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.checkName(ctx, workspaceID, name, uuid.Nil); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, name, func(ctx context.Context, slug string) (bool, error) {
		return s.categoryRepo.SlugExists(ctx, workspaceID, slug, uuid.Nil)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.invalidate(ctx, actorID, workspaceID)
	return category, nil
}

// Update renames or re-describes a category
func (s *CategoryService) Update(ctx context.Context, actorID, workspaceID, id uuid.UUID, input domain.CategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if !strings.EqualFold(name, category.Name) {
		if err := s.checkName(ctx, workspaceID, name, id); err != nil {
			return nil, err
		}
	}
	if Slugify(name) != category.Slug {
		slug, err := uniqueSlug(ctx, name, func(ctx context.Context, slug string) (bool, error) {
			return s.categoryRepo.SlugExists(ctx, workspaceID, slug, id)
		})
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}

	category.Name = name
	category.Description = input.Description
	category.UpdatedAt = time.Now().UTC()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.invalidate(ctx, actorID, workspaceID)
	return category, nil
}

// Delete deletes a category that has no products
func (s *CategoryService) Delete(ctx context.Context, actorID, workspaceID, id uuid.UUID) error {
	count, err := s.categoryRepo.CountProducts(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.Conflict("category still has products")
	}

	if err := s.categoryRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	s.invalidate(ctx, actorID, workspaceID)
	return nil
}

func (s *CategoryService) checkName(ctx context.Context, workspaceID uuid.UUID, name string, excludeID uuid.UUID) error {
	exists, err := s.categoryRepo.NameExists(ctx, workspaceID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.Validation("a category named " + name + " already exists")
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, actorID, workspaceID uuid.UUID) {
	s.cache.Invalidate(ctx, append(catalogTargets(workspaceID), actorLists(actorID)...)...)
}
