package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

const reportDateLayout = "2006-01-02"

// WorkspaceHandler handles workspace endpoints
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	dashboardService *service.DashboardService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService, dashboardService *service.DashboardService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService, dashboardService: dashboardService}
}

// Create handles workspace creation
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input domain.WorkspaceCreate
	if !decode(w, r, &input) {
		return
	}

	workspace, err := h.workspaceService.Create(r.Context(), userID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, workspace)
}

// List handles listing user's workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	workspaces, err := h.workspaceService.ListByUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, workspaces)
}

// ListOwned lists the workspaces the caller owns
func (h *WorkspaceHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	workspaces, err := h.workspaceService.ListOwned(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, workspaces)
}

// Get handles getting a workspace by ID
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, workspace)
}

// Update handles updating a workspace
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var input domain.WorkspaceUpdate
	if !decode(w, r, &input) {
		return
	}

	workspace, err := h.workspaceService.Update(r.Context(), workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, workspace)
}

// ToggleStatus flips the active flag of a workspace
func (h *WorkspaceHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.ToggleStatus(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, workspace)
}

// Delete handles deleting a workspace
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(r.Context(), userID, workspaceID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Join enrols the caller as a customer. The route is not gated since the
// caller holds no role yet.
func (h *WorkspaceHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceID")
	if !ok {
		return
	}

	assignment, err := h.workspaceService.Join(r.Context(), userID, workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, assignment)
}

// Members lists the members of a workspace
func (h *WorkspaceHandler) Members(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	members, err := h.workspaceService.Members(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, members)
}

// RemoveMember revokes a member's roles
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(r.Context(), workspaceID, memberID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Dashboard returns the workspace dashboard
func (h *WorkspaceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Workspace(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, dashboard)
}

// AdminDashboard aggregates every workspace the caller owns
func (h *WorkspaceHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Admin(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, dashboard)
}

// StaffDashboard summarises the orders assigned to the caller
func (h *WorkspaceHandler) StaffDashboard(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Staff(r.Context(), workspaceID, userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, dashboard)
}

// SalesReport streams orders of a date range as CSV. from and to are
// inclusive dates; the range defaults to the last 30 days.
func (h *WorkspaceHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from, err := queryDate(r, "from", today.AddDate(0, 0, -30))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	to, err := queryDate(r, "to", today)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.dashboardService.SalesCSV(r.Context(), workspaceID, from, to.AddDate(0, 0, 1), &buf); err != nil {
		response.FromError(w, err)
		return
	}

	filename := "sales-" + from.Format(reportDateLayout) + "-" + to.Format(reportDateLayout) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// InventoryReport returns stock totals and the variants running low
func (h *WorkspaceHandler) InventoryReport(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	report, err := h.dashboardService.Inventory(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, report)
}

// EmployeePerformanceReport returns per member fulfilment and bill totals
// for the from and to dates, defaulting to the last 30 days
func (h *WorkspaceHandler) EmployeePerformanceReport(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	from, to, ok := reportRange(w, r)
	if !ok {
		return
	}

	report, err := h.dashboardService.EmployeePerformance(r.Context(), workspaceID, from, to)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, report)
}

// CustomerReport returns one page of buyers ranked by spend
func (h *WorkspaceHandler) CustomerReport(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	from, to, ok := reportRange(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	report, err := h.dashboardService.Customers(r.Context(), workspaceID, from, to, limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, report)
}

// reportRange reads inclusive from and to dates and returns them as the
// half-open range [from, to+1 day)
func reportRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from, err := queryDate(r, "from", today.AddDate(0, 0, -30))
	if err != nil {
		response.BadRequest(w, err.Error())
		return time.Time{}, time.Time{}, false
	}
	to, err := queryDate(r, "to", today)
	if err != nil {
		response.BadRequest(w, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to.AddDate(0, 0, 1), true
}

func queryDate(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(reportDateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be a date (YYYY-MM-DD)")
	}
	return t, nil
}
