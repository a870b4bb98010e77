package handler

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

// ProductHandler handles product and variant endpoints
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns one catalogue page
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	pageSize, err := queryInt(r, "page_size", 0)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	products, err := h.productService.List(r.Context(), workspaceID, page, pageSize)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, products)
}

// Get returns a product with its variants
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, product)
}

// GetBySlug returns a product by slug
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetBySlug(r.Context(), workspaceID, chi.URLParam(r, "slug"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, product)
}

// CheckSlug reports whether the slug for a name is still free
func (h *ProductHandler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	slug, available, err := h.productService.SlugAvailable(r.Context(), workspaceID, chi.URLParam(r, "slug"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"slug":      slug,
		"available": available,
	})
}

// Stats returns catalogue statistics
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	stats, err := h.productService.Stats(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, stats)
}

// Create creates a product and its variants
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var input domain.ProductCreate
	if !decode(w, r, &input) {
		return
	}

	product, err := h.productService.Create(r.Context(), userID, workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, product)
}

// Update updates product fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var input domain.ProductUpdate
	if !decode(w, r, &input) {
		return
	}

	product, err := h.productService.Update(r.Context(), userID, workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, product)
}

// ToggleStatus flips the active flag of a product
func (h *ProductHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.productService.ToggleStatus(r.Context(), userID, workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, product)
}

// Delete deletes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), userID, workspaceID, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Variants lists the variants of a product
func (h *ProductHandler) Variants(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	variants, err := h.productService.Variants(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, variants)
}

// AddVariant adds a variant to a product
func (h *ProductHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var input domain.VariantInput
	if !decode(w, r, &input) {
		return
	}

	variant, err := h.productService.AddVariant(r.Context(), userID, workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, variant)
}

// UpdateVariant updates a variant's fields or stock
func (h *ProductHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	variantID, ok := pathID(w, r, "variantID")
	if !ok {
		return
	}

	var input domain.VariantUpdate
	if !decode(w, r, &input) {
		return
	}

	variant, err := h.productService.UpdateVariant(r.Context(), userID, workspaceID, productID, variantID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, variant)
}

// DeleteVariant deletes a variant
func (h *ProductHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	variantID, ok := pathID(w, r, "variantID")
	if !ok {
		return
	}

	if err := h.productService.DeleteVariant(r.Context(), userID, workspaceID, productID, variantID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}
