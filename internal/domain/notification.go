package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType categorises a notification
type NotificationType string

const (
	NotificationLowStock    NotificationType = "LOW_STOCK"
	NotificationOrderUpdate NotificationType = "ORDER_UPDATE"
	NotificationInvitation  NotificationType = "INVITATION"
	NotificationSystem      NotificationType = "SYSTEM"
)

// Valid reports whether t is a known type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLowStock, NotificationOrderUpdate, NotificationInvitation, NotificationSystem:
		return true
	}
	return false
}

// Notification is a persisted message for one user
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	WorkspaceID uuid.UUID        `json:"workspace_id"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 100
)

// NotificationQuery filters a user's notifications
type NotificationQuery struct {
	Limit  int
	Offset int
	Type   *NotificationType
	IsRead *bool
}

// Normalize clamps paging into range and rejects unknown filters
func (q *NotificationQuery) Normalize() error {
	if q.Limit == 0 {
		q.Limit = DefaultNotificationLimit
	}
	if q.Limit < 1 || q.Limit > MaxNotificationLimit {
		return Validation("limit must be between 1 and 100")
	}
	if q.Offset < 0 {
		return Validation("offset must not be negative")
	}
	if q.Type != nil && !q.Type.Valid() {
		return Validation("unknown notification type")
	}
	return nil
}

// NotificationPage is one page of notifications
type NotificationPage struct {
	Items  []Notification `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// NotificationCreate is a workspace message to selected members or all of them
type NotificationCreate struct {
	UserIDs   []uuid.UUID      `json:"user_ids" validate:"required_without=Broadcast,max=500"`
	Broadcast bool             `json:"broadcast"`
	Type      NotificationType `json:"type" validate:"required,oneof=LOW_STOCK ORDER_UPDATE INVITATION SYSTEM"`
	Title     string           `json:"title" validate:"required,max=255"`
	Message   string           `json:"message" validate:"required,max=2000"`
}

// NotificationBulkDelete removes several notifications at once
type NotificationBulkDelete struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}
