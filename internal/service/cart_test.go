package service

import (
	"context"
	"testing"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func variantRef(wsID uuid.UUID, stock int) *domain.VariantRef {
	return &domain.VariantRef{
		ID:            uuid.New(),
		ProductID:     uuid.New(),
		ProductName:   "Tote",
		ProductSlug:   "tote",
		ProductActive: true,
		WorkspaceID:   wsID,
		Title:         "Black",
		Price:         decimal.NewFromInt(15),
		Stock:         stock,
		IsAvailable:   stock > 0,
	}
}

func TestCartService_AddRejectsSecondWorkspace(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	svc := NewCartService(carts, products)

	userID := uuid.New()
	ref := variantRef(uuid.New(), 10)

	products.On("GetVariantRef", mock.Anything, ref.ID).Return(ref, nil)
	carts.On("Add", mock.Anything, userID, ref.ID, 1).
		Return(nil, domain.Validation("cart already holds items from another workspace"))

	_, err := svc.Add(context.Background(), userID, domain.CartItemInput{VariantID: ref.ID, Quantity: 1})

	assert.ErrorIs(t, err, domain.ErrValidation)
	carts.AssertExpectations(t)
}

func TestCartService_AddSameWorkspace(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	svc := NewCartService(carts, products)

	userID, wsID := uuid.New(), uuid.New()
	ref := variantRef(wsID, 10)
	item := &domain.CartItem{ID: uuid.New(), UserID: userID, VariantID: ref.ID, Quantity: 3, Variant: *ref}

	products.On("GetVariantRef", mock.Anything, ref.ID).Return(ref, nil)
	carts.On("Add", mock.Anything, userID, ref.ID, 2).Return(item, nil)

	got, err := svc.Add(context.Background(), userID, domain.CartItemInput{VariantID: ref.ID, Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestCartService_AddUnavailableVariant(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	svc := NewCartService(carts, products)

	ref := variantRef(uuid.New(), 0)
	products.On("GetVariantRef", mock.Anything, ref.ID).Return(ref, nil)

	_, err := svc.Add(context.Background(), uuid.New(), domain.CartItemInput{VariantID: ref.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	low := variantRef(uuid.New(), 2)
	products.On("GetVariantRef", mock.Anything, low.ID).Return(low, nil)

	_, err = svc.Add(context.Background(), uuid.New(), domain.CartItemInput{VariantID: low.ID, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrConflict)
	carts.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_UpdateQuantityZeroRemoves(t *testing.T) {
	carts := new(MockCartRepository)
	svc := NewCartService(carts, new(MockProductRepository))
	userID, variantID := uuid.New(), uuid.New()

	carts.On("Remove", mock.Anything, userID, variantID).Return(false, nil)

	err := svc.UpdateQuantity(context.Background(), userID, variantID, 0)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	carts.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_Summary(t *testing.T) {
	carts := new(MockCartRepository)
	svc := NewCartService(carts, new(MockProductRepository))
	userID, wsID := uuid.New(), uuid.New()

	a, b := variantRef(wsID, 10), variantRef(wsID, 1)
	items := []domain.CartItem{
		{VariantID: a.ID, Quantity: 2, Variant: *a},
		{VariantID: b.ID, Quantity: 3, Variant: *b},
	}
	carts.On("List", mock.Anything, userID).Return(items, nil)
	carts.On("Total", mock.Anything, userID).Return(decimal.NewFromInt(75), nil)
	carts.On("UnavailableVariantIDs", mock.Anything, userID).Return([]uuid.UUID{b.ID}, nil)

	summary, err := svc.Summary(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 5, summary.ItemCount)
	assert.True(t, decimal.NewFromInt(75).Equal(summary.Total))
	assert.False(t, summary.AllAvailable)
	assert.Equal(t, []uuid.UUID{b.ID}, summary.UnavailableItems)
	require.NotNil(t, summary.WorkspaceID)
	assert.Equal(t, wsID, *summary.WorkspaceID)
}

func TestCheckoutLines(t *testing.T) {
	wsID := uuid.New()
	a, b := variantRef(wsID, 10), variantRef(uuid.New(), 10)

	_, err := checkoutLines(nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = checkoutLines([]domain.CartItem{{Quantity: 1, Variant: *a}, {Quantity: 1, Variant: *b}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = checkoutLines([]domain.CartItem{{Quantity: 11, Variant: *a}})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := checkoutLines([]domain.CartItem{{Quantity: 2, Variant: *a}})
	require.NoError(t, err)
	assert.Equal(t, wsID, got)
}
