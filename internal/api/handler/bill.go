package handler

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/middleware"
	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

// BillHandler handles in-store bills
type BillHandler struct {
	billService *service.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// Create records a bill priced from current variant prices
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var input domain.BillCreate
	if !decode(w, r, &input) {
		return
	}

	bill, err := h.billService.Create(r.Context(), userID, workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, bill)
}

// List lists workspace bills
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	bills, err := h.billService.List(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bills)
}

// Get returns one bill
func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}

	bill, err := h.billService.Get(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bill)
}

// UpdateStatus settles or cancels a pending bill
func (h *BillHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}

	var input domain.BillStatusUpdate
	if !decode(w, r, &input) {
		return
	}

	bill, err := h.billService.UpdateStatus(r.Context(), workspaceID, id, input.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bill)
}

// Delete deletes a bill
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}

	if err := h.billService.Delete(r.Context(), workspaceID, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Update renames the customer of a pending bill
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}

	var input domain.BillUpdate
	if !decode(w, r, &input) {
		return
	}

	bill, err := h.billService.Update(r.Context(), workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bill)
}

// ByCreator lists the bills one team member recorded
func (h *BillHandler) ByCreator(w http.ResponseWriter, r *http.Request) {
	workspaceID, actorID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	role, _ := middleware.GetRole(r.Context())

	bills, err := h.billService.ListByCreator(r.Context(), actorID, role, workspaceID, userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bills)
}

// Items lists the lines of a bill
func (h *BillHandler) Items(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}

	items, err := h.billService.Items(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, items)
}

// AddItem adds a variant line to a pending bill
func (h *BillHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}

	var input domain.BillItemInput
	if !decode(w, r, &input) {
		return
	}

	bill, err := h.billService.AddItem(r.Context(), workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, bill)
}

// UpdateItem sets the quantity of a bill line
func (h *BillHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	var input domain.BillItemUpdate
	if !decode(w, r, &input) {
		return
	}

	bill, err := h.billService.UpdateItem(r.Context(), workspaceID, id, itemID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bill)
}

// DeleteItem removes a bill line
func (h *BillHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "billID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	bill, err := h.billService.DeleteItem(r.Context(), workspaceID, id, itemID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, bill)
}
