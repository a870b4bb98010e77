package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/realtime"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationService persists notifications and pushes them to open streams
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	workspaceRepo    domain.WorkspaceRepository
	cache            *cache.Cache
	push             realtime.Publisher
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo domain.NotificationRepository, workspaceRepo domain.WorkspaceRepository, c *cache.Cache, push realtime.Publisher) *NotificationService {
	if push == nil {
		push = realtime.Discard{}
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		workspaceRepo:    workspaceRepo,
		cache:            c,
		push:             push,
	}
}

// List returns one page of the user's notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, q domain.NotificationQuery) (*domain.NotificationPage, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	return cache.ReadThrough(ctx, s.cache, cache.Notifications(userID, q), func(ctx context.Context) (*domain.NotificationPage, error) {
		return s.notificationRepo.List(ctx, userID, q)
	})
}

// UnreadCount counts the user's unread notifications, optionally in one workspace
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int, error) {
	return cache.ReadThrough(ctx, s.cache, cache.UnreadNotifications(userID, workspaceID), func(ctx context.Context) (int, error) {
		return s.notificationRepo.UnreadCount(ctx, userID, workspaceID)
	})
}

// MarkRead marks one notification read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.notificationRepo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("notification")
	}

	s.cache.Invalidate(ctx, cache.UserNotifications(userID))
	return nil
}

// MarkAllRead marks every unread notification read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID, workspaceID)
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, cache.UserNotifications(userID))
	return n, nil
}

// Delete deletes one notification
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.notificationRepo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("notification")
	}

	s.cache.Invalidate(ctx, cache.UserNotifications(userID))
	return nil
}

// DeleteMany deletes the listed notifications; ids the user does not own are skipped
func (s *NotificationService) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.DeleteMany(ctx, userID, mapset.NewThreadUnsafeSet(ids...).ToSlice())
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, cache.UserNotifications(userID))
	return n, nil
}

// Create sends a workspace notification to selected members or to all of them
func (s *NotificationService) Create(ctx context.Context, workspaceID uuid.UUID, input domain.NotificationCreate) ([]domain.Notification, error) {
	members, err := s.workspaceRepo.MemberIDs(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var recipients []uuid.UUID
	if input.Broadcast {
		recipients = members
	} else {
		memberSet := mapset.NewThreadUnsafeSet(members...)
		targets := mapset.NewThreadUnsafeSet(input.UserIDs...)
		if !targets.IsSubset(memberSet) {
			return nil, domain.Validation("every recipient must be a member of the workspace")
		}
		recipients = targets.ToSlice()
	}

	if len(recipients) == 0 {
		return []domain.Notification{}, nil
	}

	return s.deliver(ctx, workspaceID, recipients, input.Type, input.Title, input.Message)
}

// NotifyRoles notifies every member holding one of roles and returns how many were notified
func (s *NotificationService) NotifyRoles(ctx context.Context, workspaceID uuid.UUID, roles []domain.Role, kind domain.NotificationType, title, message string) (int, error) {
	recipients, err := s.workspaceRepo.MemberIDs(ctx, workspaceID, roles...)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	created, err := s.deliver(ctx, workspaceID, recipients, kind, title, message)
	return len(created), err
}

// NotifyUser notifies a single user
func (s *NotificationService) NotifyUser(ctx context.Context, workspaceID, userID uuid.UUID, kind domain.NotificationType, title, message string) error {
	_, err := s.deliver(ctx, workspaceID, []uuid.UUID{userID}, kind, title, message)
	return err
}

func (s *NotificationService) deliver(ctx context.Context, workspaceID uuid.UUID, recipients []uuid.UUID, kind domain.NotificationType, title, message string) ([]domain.Notification, error) {
	now := time.Now().UTC()
	notifications := make([]domain.Notification, len(recipients))
	for i, userID := range recipients {
		notifications[i] = domain.Notification{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			UserID:      userID,
			Type:        kind,
			Title:       title,
			Message:     message,
			CreatedAt:   now,
		}
	}

	if err := s.notificationRepo.CreateMany(ctx, notifications); err != nil {
		return nil, err
	}

	targets := make([]cache.Target, len(recipients))
	for i, userID := range recipients {
		targets[i] = cache.UserNotifications(userID)
	}
	s.cache.Invalidate(ctx, targets...)

	for _, n := range notifications {
		s.push.Publish(ctx, n.UserID, realtime.NewEvent(realtime.EventNotificationNew, n))
	}

	return notifications, nil
}

// notifyLowStock alerts workspace admins and managers. A nil service is a no-op.
func notifyLowStock(ctx context.Context, notifications *NotificationService, workspaceID uuid.UUID, title string, stock int) {
	if notifications == nil {
		return
	}

	message := fmt.Sprintf("%s has %d units left", title, stock)
	if stock == 0 {
		message = title + " is out of stock"
	}

	roles := []domain.Role{domain.RoleAdmin, domain.RoleManager}
	if _, err := notifications.NotifyRoles(ctx, workspaceID, roles, domain.NotificationLowStock, "Low stock", message); err != nil {
		log.Warn().Err(err).Str("workspace_id", workspaceID.String()).Msg("failed to send low stock notification")
	}
}
