package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductService handles products and their variants
type ProductService struct {
	productRepo   domain.ProductRepository
	categoryRepo  domain.CategoryRepository
	notifications *NotificationService
	cache         *cache.Cache
}

// NewProductService creates a new product service. notifications may be nil,
// in which case low-stock alerts are skipped.
func NewProductService(productRepo domain.ProductRepository, categoryRepo domain.CategoryRepository, notifications *NotificationService, c *cache.Cache) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		notifications: notifications,
		cache:         c,
	}
}

// List returns one page of a workspace catalogue
func (s *ProductService) List(ctx context.Context, workspaceID uuid.UUID, page, pageSize int) (*domain.ProductPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	key := cache.WorkspaceProductsPage(workspaceID, page, pageSize)
	return cache.ReadThrough(ctx, s.cache, key, func(ctx context.Context) (*domain.ProductPage, error) {
		return s.productRepo.List(ctx, workspaceID, page, pageSize)
	})
}

// Get retrieves a product with its variants
func (s *ProductService) Get(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Product, error) {
	product, err := cache.ReadThrough(ctx, s.cache, cache.Product(id), func(ctx context.Context) (*domain.Product, error) {
		return s.productRepo.GetByID(ctx, workspaceID, id)
	})
	if err != nil {
		return nil, err
	}
	// the detail key is not workspace scoped
	if product.WorkspaceID != workspaceID {
		return nil, domain.NotFound("product")
	}
	return product, nil
}

// GetBySlug retrieves a product by its slug
func (s *ProductService) GetBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*domain.Product, error) {
	return cache.ReadThrough(ctx, s.cache, cache.ProductSlug(workspaceID, slug), func(ctx context.Context) (*domain.Product, error) {
		return s.productRepo.GetBySlug(ctx, workspaceID, slug)
	})
}

// SlugAvailable reports whether the slug derived from name is free
func (s *ProductService) SlugAvailable(ctx context.Context, workspaceID uuid.UUID, name string) (string, bool, error) {
	slug := Slugify(name)
	if slug == "" {
		return "", false, domain.Validation("slug must contain letters or digits")
	}

	taken, err := s.productRepo.SlugExists(ctx, workspaceID, slug, uuid.Nil)
	if err != nil {
		return "", false, err
	}
	return slug, !taken, nil
}

// Stats summarises the catalogue of a workspace
func (s *ProductService) Stats(ctx context.Context, workspaceID uuid.UUID) (*domain.ProductStats, error) {
	return cache.ReadThrough(ctx, s.cache, cache.ProductStats(workspaceID), func(ctx context.Context) (*domain.ProductStats, error) {
		return s.productRepo.Stats(ctx, workspaceID, domain.LowStockThreshold)
	})
}

// Create creates a product with at least one variant
func (s *ProductService) Create(ctx context.Context, actorID, workspaceID uuid.UUID, input domain.ProductCreate) (*domain.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, workspaceID, input.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	slug, err := uniqueSlug(ctx, name, func(ctx context.Context, slug string) (bool, error) {
		return s.productRepo.SlugExists(ctx, workspaceID, slug, uuid.Nil)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Images:      input.Images,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	for _, in := range input.Variants {
		v, err := newVariant(product.ID, in, now)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *v)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, actorID, workspaceID, product.ID, product.Slug)
	for i := range product.Variants {
		s.alertLowStock(ctx, workspaceID, product, &product.Variants[i])
	}
	return product, nil
}

// Update changes product fields; a new name gets a new slug
func (s *ProductService) Update(ctx context.Context, actorID, workspaceID, id uuid.UUID, input domain.ProductUpdate) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	oldSlug := product.Slug

	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, workspaceID, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if Slugify(name) != product.Slug {
			slug, err := uniqueSlug(ctx, name, func(ctx context.Context, slug string) (bool, error) {
				return s.productRepo.SlugExists(ctx, workspaceID, slug, id)
			})
			if err != nil {
				return nil, err
			}
			product.Slug = slug
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, actorID, workspaceID, id, oldSlug, product.Slug)
	return product, nil
}

// ToggleStatus flips the active flag of a product
func (s *ProductService) ToggleStatus(ctx context.Context, actorID, workspaceID, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.SetActive(ctx, workspaceID, id, !product.IsActive); err != nil {
		return nil, err
	}
	product.IsActive = !product.IsActive

	s.invalidateProduct(ctx, actorID, workspaceID, id, product.Slug)
	return product, nil
}

// Delete deletes a product and its variants
func (s *ProductService) Delete(ctx context.Context, actorID, workspaceID, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	s.invalidateProduct(ctx, actorID, workspaceID, id, product.Slug)
	return nil
}

// Variants lists the variants of a product
func (s *ProductService) Variants(ctx context.Context, workspaceID, productID uuid.UUID) ([]domain.ProductVariant, error) {
	if _, err := s.Get(ctx, workspaceID, productID); err != nil {
		return nil, err
	}

	return cache.ReadThrough(ctx, s.cache, cache.ProductVariants(productID), func(ctx context.Context) ([]domain.ProductVariant, error) {
		return s.productRepo.ListVariants(ctx, productID)
	})
}

// AddVariant adds a variant to a product
func (s *ProductService) AddVariant(ctx context.Context, actorID, workspaceID, productID uuid.UUID, input domain.VariantInput) (*domain.ProductVariant, error) {
	product, err := s.productRepo.GetByID(ctx, workspaceID, productID)
	if err != nil {
		return nil, err
	}

	variant, err := newVariant(productID, input, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, actorID, workspaceID, productID, product.Slug)
	s.alertLowStock(ctx, workspaceID, product, variant)
	return variant, nil
}

// UpdateVariant applies a partial update to a variant
func (s *ProductService) UpdateVariant(ctx context.Context, actorID, workspaceID, productID, variantID uuid.UUID, input domain.VariantUpdate) (*domain.ProductVariant, error) {
	product, err := s.productRepo.GetByID(ctx, workspaceID, productID)
	if err != nil {
		return nil, err
	}

	variant, err := s.productRepo.GetVariant(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}
	previousStock := variant.Stock

	if input.Title != nil {
		variant.Title = strings.TrimSpace(*input.Title)
	}
	if input.SKU != nil {
		variant.SKU = *input.SKU
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, domain.Validation("price must not be negative")
		}
		variant.Price = *input.Price
	}
	if input.Color != nil {
		variant.Color = *input.Color
	}
	if input.Size != nil {
		variant.Size = *input.Size
	}
	if input.Stock != nil {
		variant.Stock = *input.Stock
		// restocking a sold-out variant makes it purchasable again
		if previousStock == 0 && variant.Stock > 0 && input.IsAvailable == nil {
			variant.IsAvailable = true
		}
	}
	if input.IsAvailable != nil {
		variant.IsAvailable = *input.IsAvailable
	}
	variant.ApplyStockInvariant()
	variant.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.UpdateVariant(ctx, variant); err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, actorID, workspaceID, productID, product.Slug)
	if input.Stock != nil && variant.Stock < previousStock {
		s.alertLowStock(ctx, workspaceID, product, variant)
	}
	return variant, nil
}

// DeleteVariant deletes a variant of a product
func (s *ProductService) DeleteVariant(ctx context.Context, actorID, workspaceID, productID, variantID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, workspaceID, productID)
	if err != nil {
		return err
	}

	if err := s.productRepo.DeleteVariant(ctx, productID, variantID); err != nil {
		return err
	}

	s.invalidateProduct(ctx, actorID, workspaceID, productID, product.Slug)
	return nil
}

// AlertLowStock notifies workspace admins and managers about low variants
func (s *ProductService) AlertLowStock(ctx context.Context, workspaceID uuid.UUID, changes []domain.StockChange) {
	for _, c := range changes {
		if c.Stock >= domain.LowStockThreshold {
			continue
		}
		notifyLowStock(ctx, s.notifications, workspaceID, c.Title, c.Stock)
	}
}

func (s *ProductService) alertLowStock(ctx context.Context, workspaceID uuid.UUID, product *domain.Product, v *domain.ProductVariant) {
	if !v.IsLowStock() {
		return
	}
	notifyLowStock(ctx, s.notifications, workspaceID, product.Name+" / "+v.Title, v.Stock)
}

func (s *ProductService) invalidateProduct(ctx context.Context, actorID, workspaceID, productID uuid.UUID, slugs ...string) {
	targets := []cache.Target{
		cache.Product(productID),
		cache.ProductVariants(productID),
	}
	for _, slug := range slugs {
		targets = append(targets, cache.ProductSlug(workspaceID, slug))
	}
	targets = append(targets, catalogTargets(workspaceID)...)
	targets = append(targets, actorLists(actorID)...)

	s.cache.Invalidate(ctx, targets...)
}

func newVariant(productID uuid.UUID, in domain.VariantInput, now time.Time) (*domain.ProductVariant, error) {
	if in.Price.IsNegative() {
		return nil, domain.Validation("price must not be negative")
	}

	v := &domain.ProductVariant{
		ID:          uuid.New(),
		ProductID:   productID,
		Title:       strings.TrimSpace(in.Title),
		SKU:         in.SKU,
		Price:       in.Price,
		Stock:       in.Stock,
		Color:       in.Color,
		Size:        in.Size,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsAvailable != nil {
		v.IsAvailable = *in.IsAvailable
	}
	v.ApplyStockInvariant()

	return v, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
