package handler

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

// CartHandler handles the caller's cart
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Items lists cart items
func (h *CartHandler) Items(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.cartService.Items(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, items)
}

// Summary returns items, total and availability
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.cartService.Summary(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, summary)
}

// Add adds a variant to the cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input domain.CartItemInput
	if !decode(w, r, &input) {
		return
	}

	item, err := h.cartService.Add(r.Context(), userID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, item)
}

// UpdateQuantity sets an item's quantity; zero removes it
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	variantID, ok := pathID(w, r, "variantID")
	if !ok {
		return
	}

	var input domain.CartQuantityUpdate
	if !decode(w, r, &input) {
		return
	}

	if err := h.cartService.UpdateQuantity(r.Context(), userID, variantID, input.Quantity); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Remove removes one item
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	variantID, ok := pathID(w, r, "variantID")
	if !ok {
		return
	}

	if err := h.cartService.Remove(r.Context(), userID, variantID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	removed, err := h.cartService.Clear(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]int64{"removed": removed})
}
