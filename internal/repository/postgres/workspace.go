package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WorkspaceRepository handles workspace and role assignment data access
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

const workspaceColumns = `w.id, w.name, w.slug, w.description, w.location, w.is_active, w.owner_id, w.created_at, w.updated_at`

// Create creates a new workspace and grants the owner ADMIN
func (r *WorkspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO workspaces (id, name, slug, description, location, is_active, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err := tx.Exec(ctx, query,
			workspace.ID,
			workspace.Name,
			workspace.Slug,
			workspace.Description,
			workspace.Location,
			workspace.IsActive,
			workspace.OwnerID,
			workspace.CreatedAt,
			workspace.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Conflict("workspace slug already taken")
			}
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, workspace_id, role, created_at)
			VALUES ($1, $2, $3, $4)
		`, workspace.OwnerID, workspace.ID, domain.RoleAdmin, workspace.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to grant owner role: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces w WHERE w.id = $1`

	workspace, err := scanWorkspace(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("workspace")
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return workspace, nil
}

// ListByUserID retrieves all workspaces the user holds any role in
func (r *WorkspaceRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	query := `
		SELECT ` + workspaceColumns + `
		FROM workspaces w
		WHERE EXISTS (SELECT 1 FROM user_roles ur WHERE ur.workspace_id = w.id AND ur.user_id = $1)
		ORDER BY w.created_at DESC
	`
	return r.list(ctx, query, userID)
}

// ListByOwner retrieves the workspaces owned by a user
func (r *WorkspaceRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Workspace, error) {
	query := `
		SELECT ` + workspaceColumns + `
		FROM workspaces w
		WHERE w.owner_id = $1
		ORDER BY w.created_at DESC
	`
	return r.list(ctx, query, ownerID)
}

// SlugExists checks if a workspace slug is taken
func (r *WorkspaceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM workspaces WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check workspace slug: %w", err)
	}
	return exists, nil
}

// Update updates a workspace
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	query := `
		UPDATE workspaces
		SET name = $2,
		    description = $3,
		    location = $4,
		    updated_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Description,
		workspace.Location,
		workspace.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("workspace")
	}

	return nil
}

// SetActive toggles the active flag of a workspace
func (r *WorkspaceRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE workspaces SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update workspace status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("workspace")
	}
	return nil
}

// Delete deletes a workspace and everything it owns
func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM workspaces WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("workspace")
	}

	return nil
}

// AssignRole grants a role; granting an existing role is a no-op
func (r *WorkspaceRepository) AssignRole(ctx context.Context, assignment domain.RoleAssignment) error {
	query := `
		INSERT INTO user_roles (user_id, workspace_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, workspace_id, role) DO NOTHING
	`

	_, err := r.db.Pool.Exec(ctx, query,
		assignment.UserID,
		assignment.WorkspaceID,
		assignment.Role,
		assignment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

// RemoveMember revokes every role the user holds in a workspace
func (r *WorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM user_roles WHERE workspace_id = $1 AND user_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, workspaceID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove member: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListMembers lists every role assignment in a workspace with user details
func (r *WorkspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, ur.role, ur.created_at
		FROM user_roles ur
		INNER JOIN users u ON u.id = ur.user_id
		WHERE ur.workspace_id = $1
		ORDER BY ur.created_at, u.email
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []domain.WorkspaceMember{}
	for rows.Next() {
		var m domain.WorkspaceMember
		if err := rows.Scan(&m.UserID, &m.Email, &m.FirstName, &m.LastName, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// MemberIDs returns distinct members holding any of roles, or all members
func (r *WorkspaceRepository) MemberIDs(ctx context.Context, workspaceID uuid.UUID, roles ...domain.Role) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM user_roles
		WHERE workspace_id = $1 AND (cardinality($2::text[]) = 0 OR role = ANY($2))
	`

	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	rows, err := r.db.Pool.Query(ctx, query, workspaceID, names)
	if err != nil {
		return nil, fmt.Errorf("failed to list member ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan member ids: %w", err)
	}
	return ids, nil
}

// ListRoles returns every role assignment of a user
func (r *WorkspaceRepository) ListRoles(ctx context.Context, userID uuid.UUID) ([]domain.RoleAssignment, error) {
	query := `
		SELECT user_id, workspace_id, role, created_at
		FROM user_roles
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.RoleAssignment{}
	for rows.Next() {
		var ra domain.RoleAssignment
		if err := rows.Scan(&ra.UserID, &ra.WorkspaceID, &ra.Role, &ra.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, ra)
	}

	return roles, rows.Err()
}

func (r *WorkspaceRepository) list(ctx context.Context, query string, arg any) ([]domain.Workspace, error) {
	rows, err := r.db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []domain.Workspace{}
	for rows.Next() {
		workspace, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, *workspace)
	}

	return workspaces, rows.Err()
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	err := row.Scan(
		&w.ID,
		&w.Name,
		&w.Slug,
		&w.Description,
		&w.Location,
		&w.IsActive,
		&w.OwnerID,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
