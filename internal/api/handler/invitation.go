package handler

import (
	"net/http"

	"github.com/Rrens/storefront/internal/api/middleware"
	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

// InvitationHandler handles invitation endpoints
type InvitationHandler struct {
	invitationService *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Create invites an email address into the workspace. The plain token is
// only ever returned here.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, userID, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	role, _ := middleware.GetRole(r.Context())

	var input domain.InvitationCreate
	if !decode(w, r, &input) {
		return
	}

	issued, err := h.invitationService.Invite(r.Context(), userID, role, workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, issued)
}

// List lists pending invitations
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListPending(r.Context(), workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invitations)
}

// Accept redeems an invitation for the caller
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input domain.InvitationAccept
	if !decode(w, r, &input) {
		return
	}

	invitation, err := h.invitationService.Accept(r.Context(), userID, input.Token)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invitation)
}

// UpdateStatus revokes or expires a pending invitation
func (h *InvitationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invitationID")
	if !ok {
		return
	}

	var input domain.InvitationStatusUpdate
	if !decode(w, r, &input) {
		return
	}

	invitation, err := h.invitationService.ChangeStatus(r.Context(), workspaceID, id, input.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invitation)
}
