package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InvitationRepository handles invitation data access
type InvitationRepository struct {
	db *DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, workspace_id, email, role, status, token_hash, invited_by, expires_at, accepted_at, created_at`

// Create stores a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		inv.ID,
		inv.WorkspaceID,
		inv.Email,
		inv.Role,
		inv.Status,
		inv.TokenHash,
		inv.InvitedBy,
		inv.ExpiresAt,
		inv.AcceptedAt,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

// GetByID retrieves an invitation of a workspace
func (r *InvitationRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1 AND workspace_id = $2`
	return r.getOne(ctx, query, id, workspaceID)
}

// GetByTokenHash retrieves an invitation by the digest of its token
func (r *InvitationRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token_hash = $1`
	return r.getOne(ctx, query, tokenHash)
}

// ListPending lists PENDING invitations that have not yet expired at now
func (r *InvitationRepository) ListPending(ctx context.Context, workspaceID uuid.UUID, now time.Time) ([]domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE workspace_id = $1 AND status = 'PENDING' AND expires_at > $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return collectInvitations(rows)
}

// UpdateStatus changes the status of a still PENDING invitation
func (r *InvitationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvitationStatus) (bool, error) {
	query := `UPDATE invitations SET status = $2 WHERE id = $1 AND status = 'PENDING'`

	tag, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("failed to update invitation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Accept marks the invitation ACCEPTED and grants its role to userID
func (r *InvitationRepository) Accept(ctx context.Context, inv *domain.Invitation, userID uuid.UUID, at time.Time) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE invitations
			SET status = 'ACCEPTED', accepted_at = $2
			WHERE id = $1 AND status = 'PENDING' AND expires_at > $2
		`, inv.ID, at)
		if err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.Conflict("invitation is no longer pending")
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, workspace_id, role, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, workspace_id, role) DO NOTHING
		`, userID, inv.WorkspaceID, inv.Role, at)
		if err != nil {
			return fmt.Errorf("failed to grant invited role: %w", err)
		}

		return nil
	})
}

// ExpireStale marks every PENDING invitation past its expiry as EXPIRED
func (r *InvitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE invitations SET status = 'EXPIRED' WHERE status = 'PENDING' AND expires_at <= $1`

	tag, err := r.db.Pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *InvitationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Invitation, error) {
	inv, err := scanInvitation(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("invitation")
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func collectInvitations(rows pgx.Rows) ([]domain.Invitation, error) {
	defer rows.Close()

	invitations := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.WorkspaceID,
		&inv.Email,
		&inv.Role,
		&inv.Status,
		&inv.TokenHash,
		&inv.InvitedBy,
		&inv.ExpiresAt,
		&inv.AcceptedAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
