package handler

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/middleware"
	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout turns the caller's cart into an order
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input domain.CheckoutInput
	if r.ContentLength != 0 && !decode(w, r, &input) {
		return
	}

	order, err := h.orderService.Checkout(r.Context(), userID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, order)
}

// Mine lists the caller's orders across workspaces
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.Mine(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, orders)
}

// List lists workspace orders, optionally filtered by status
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var filter domain.OrderFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		filter.Status = &status
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	orders, err := h.orderService.List(r.Context(), workspaceID, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, orders)
}

// Get returns one order with its items
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, order)
}

// UpdateStatus moves an order along its lifecycle
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	var input domain.OrderStatusUpdate
	if !decode(w, r, &input) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), userID, workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, order)
}

// Assign assigns an order to a staff member
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	var input domain.OrderAssign
	if !decode(w, r, &input) {
		return
	}

	order, err := h.orderService.Assign(r.Context(), userID, workspaceID, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, order)
}

// Unassign clears an order's assignee
func (h *OrderHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	role, _ := middleware.GetRole(r.Context())

	order, err := h.orderService.Unassign(r.Context(), userID, role, workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, order)
}

// History lists the status history of an order
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	history, err := h.orderService.History(r.Context(), workspaceID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, history)
}
