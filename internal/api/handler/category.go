package handler

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List lists the workspace categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	categories, err := h.categoryService.List(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, categories)
}

// Get returns one category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, category)
}

// Create creates a category
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var input domain.CategoryInput
	if !decode(w, r, &input) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), userID, workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, category)
}

// Update renames or redescribes a category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	var input domain.CategoryInput
	if !decode(w, r, &input) {
		return
	}

	category, err := h.categoryService.Update(r.Context(), userID, workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, category)
}

// Delete deletes a category that has no products
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), userID, workspaceID, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}
