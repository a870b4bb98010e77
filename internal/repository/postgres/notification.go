package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NotificationRepository handles notification data access
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateMany bulk-inserts notifications with COPY
func (r *NotificationRepository) CreateMany(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	columns := []string{"id", "workspace_id", "user_id", "type", "title", "message", "is_read", "created_at"}
	source := pgx.CopyFromSlice(len(notifications), func(i int) ([]any, error) {
		n := notifications[i]
		return []any{n.ID, n.WorkspaceID, n.UserID, string(n.Type), n.Title, n.Message, n.IsRead, n.CreatedAt}, nil
	})

	if _, err := r.db.Pool.CopyFrom(ctx, pgx.Identifier{"notifications"}, columns, source); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// List returns one page of a user's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, q domain.NotificationQuery) (*domain.NotificationPage, error) {
	var typeFilter *string
	if q.Type != nil {
		t := string(*q.Type)
		typeFilter = &t
	}

	where := `WHERE user_id = $1 AND ($2::text IS NULL OR type = $2) AND ($3::boolean IS NULL OR is_read = $3)`

	page := &domain.NotificationPage{Items: []domain.Notification{}, Limit: q.Limit, Offset: q.Offset}
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+where, userID, typeFilter, q.IsRead).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, workspace_id, user_id, type, title, message, is_read, created_at
		FROM notifications
		` + where + `
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, typeFilter, q.IsRead, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.WorkspaceID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		page.Items = append(page.Items, n)
	}

	return page, rows.Err()
}

// UnreadCount counts unread notifications, optionally within one workspace
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND NOT is_read AND ($2::uuid IS NULL OR workspace_id = $2)
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, userID, workspaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkAllRead marks every unread notification of the user read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND NOT is_read AND ($2::uuid IS NULL OR workspace_id = $2)
	`

	tag, err := r.db.Pool.Exec(ctx, query, userID, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete deletes one of the user's notifications
func (r *NotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteMany deletes the listed notifications owned by the user
func (r *NotificationRepository) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
