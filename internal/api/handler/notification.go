package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/service"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns one page of the caller's notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	q, err := notificationQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	page, err := h.notificationService.List(r.Context(), userID, q)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, page)
}

func notificationQuery(r *http.Request) (domain.NotificationQuery, error) {
	var q domain.NotificationQuery
	var err error

	if q.Limit, err = queryInt(r, "limit", 0); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(r, "offset", 0); err != nil {
		return q, err
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := domain.NotificationType(raw)
		q.Type = &t
	}
	if raw := r.URL.Query().Get("is_read"); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errors.New("is_read must be true or false")
		}
		q.IsRead = &read
	}
	return q, nil
}

// UnreadCount counts unread notifications, optionally in one workspace
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	workspaceID, err := queryUUID(r, "workspace_id")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), userID, workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]int{"count": count})
}

// MarkRead marks one notification read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), userID, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// MarkAllRead marks every unread notification read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	workspaceID, err := queryUUID(r, "workspace_id")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updated, err := h.notificationService.MarkAllRead(r.Context(), userID, workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]int64{"updated": updated})
}

// Delete deletes one notification
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(r.Context(), userID, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// BulkDelete deletes several of the caller's notifications
func (h *NotificationHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input domain.NotificationBulkDelete
	if !decode(w, r, &input) {
		return
	}

	deleted, err := h.notificationService.DeleteMany(r.Context(), userID, input.IDs)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]int64{"deleted": deleted})
}

// Send notifies selected workspace members or all of them
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	workspaceID, _, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var input domain.NotificationCreate
	if !decode(w, r, &input) {
		return
	}

	created, err := h.notificationService.Create(r.Context(), workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"sent":          len(created),
		"notifications": created,
	})
}
