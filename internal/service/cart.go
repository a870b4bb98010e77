package service

import (
	"context"
	"slices"
	"strings"

	"github.com/Rrens/storefront/internal/domain"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CartService manages a user's cart. A cart only ever holds items from one workspace.
type CartService struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
}

// NewCartService creates a new cart service
func NewCartService(cartRepo domain.CartRepository, productRepo domain.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// Items lists the cart lines of userID
func (s *CartService) Items(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	return s.cartRepo.List(ctx, userID)
}

// Add puts a variant in the cart or raises its quantity. Items from a second
// workspace are rejected with a validation error.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, input domain.CartItemInput) (*domain.CartItem, error) {
	if input.Quantity < 1 {
		return nil, domain.Validation("quantity must be at least 1")
	}

	variant, err := s.productRepo.GetVariantRef(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if !variant.ProductActive || !variant.IsAvailable {
		return nil, domain.Validation("variant is not available")
	}
	if !variant.Purchasable(input.Quantity) {
		return nil, domain.Conflict("not enough stock for " + variant.Title)
	}

	// the repository repeats the stock check against the line already in the
	// cart and enforces the single workspace rule under a per-user lock
	return s.cartRepo.Add(ctx, userID, input.VariantID, input.Quantity)
}

// UpdateQuantity sets a line quantity; zero removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return domain.Validation("quantity must not be negative")
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, variantID)
	}

	variant, err := s.productRepo.GetVariantRef(ctx, variantID)
	if err != nil {
		return err
	}
	if !variant.Purchasable(quantity) {
		return domain.Conflict("not enough stock for " + variant.Title)
	}

	ok, err := s.cartRepo.SetQuantity(ctx, userID, variantID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("cart item")
	}
	return nil
}

// Remove deletes one line
func (s *CartService) Remove(ctx context.Context, userID, variantID uuid.UUID) error {
	ok, err := s.cartRepo.Remove(ctx, userID, variantID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("cart item")
	}
	return nil
}

// Clear empties the cart and returns the number of removed lines
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.cartRepo.Clear(ctx, userID)
}

// Summary returns the cart with its total and the lines that cannot be bought
func (s *CartService) Summary(ctx context.Context, userID uuid.UUID) (*domain.CartSummary, error) {
	var (
		items       []domain.CartItem
		total       decimal.Decimal
		unavailable []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.cartRepo.List(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.cartRepo.Total(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		unavailable, err = s.cartRepo.UnavailableVariantIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.CartItem{}
	}
	if unavailable == nil {
		unavailable = []uuid.UUID{}
	}

	summary := &domain.CartSummary{
		Items:            items,
		Total:            total,
		AllAvailable:     len(unavailable) == 0,
		UnavailableItems: unavailable,
	}
	for _, item := range items {
		summary.ItemCount += item.Quantity
	}
	if len(items) > 0 {
		ws := items[0].Variant.WorkspaceID
		summary.WorkspaceID = &ws
	}
	return summary, nil
}

// checkoutLines validates the cart for checkout and returns its single workspace
func checkoutLines(items []domain.CartItem) (uuid.UUID, error) {
	if len(items) == 0 {
		return uuid.Nil, domain.Validation("cart is empty")
	}

	workspaces := mapset.NewThreadUnsafeSet[uuid.UUID]()
	var unavailable []string
	for _, item := range items {
		workspaces.Add(item.Variant.WorkspaceID)
		if !item.Variant.Purchasable(item.Quantity) {
			unavailable = append(unavailable, item.Variant.Title)
		}
	}
	if workspaces.Cardinality() > 1 {
		return uuid.Nil, domain.Validation("cart holds items from more than one workspace")
	}
	if len(unavailable) > 0 {
		slices.Sort(unavailable)
		return uuid.Nil, domain.Conflict("some items are unavailable: " + strings.Join(unavailable, ", "))
	}

	return items[0].Variant.WorkspaceID, nil
}
