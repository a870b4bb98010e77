package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
)

// WorkspaceService handles workspace and membership operations
type WorkspaceService struct {
	workspaceRepo domain.WorkspaceRepository
	cache         *cache.Cache
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(workspaceRepo domain.WorkspaceRepository, c *cache.Cache) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo, cache: c}
}

// Create creates a new workspace owned by userID, who becomes its ADMIN
func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	slug, err := uniqueSlug(ctx, input.Name, func(ctx context.Context, slug string) (bool, error) {
		return s.workspaceRepo.SlugExists(ctx, slug)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workspace := &domain.Workspace{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Location:    input.Location,
		IsActive:    true,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, append(actorLists(userID), cache.UserRoles(userID))...)
	return workspace, nil
}

// ListByUser lists the workspaces userID holds any role in
func (s *WorkspaceService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	return cache.ReadThrough(ctx, s.cache, cache.UserWorkspaces(userID), func(ctx context.Context) ([]domain.Workspace, error) {
		return s.workspaceRepo.ListByUserID(ctx, userID)
	})
}

// ListOwned lists the workspaces userID owns
func (s *WorkspaceService) ListOwned(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	return cache.ReadThrough(ctx, s.cache, cache.AdminWorkspaces(userID), func(ctx context.Context) ([]domain.Workspace, error) {
		return s.workspaceRepo.ListByOwner(ctx, userID)
	})
}

// Get retrieves a workspace
func (s *WorkspaceService) Get(ctx context.Context, workspaceID uuid.UUID) (*domain.Workspace, error) {
	return cache.ReadThrough(ctx, s.cache, cache.Workspace(workspaceID), func(ctx context.Context) (*domain.Workspace, error) {
		return s.workspaceRepo.GetByID(ctx, workspaceID)
	})
}

// Update changes the descriptive fields of a workspace
func (s *WorkspaceService) Update(ctx context.Context, workspaceID uuid.UUID, input domain.WorkspaceUpdate) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		workspace.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		workspace.Description = *input.Description
	}
	if input.Location != nil {
		workspace.Location = *input.Location
	}
	workspace.UpdatedAt = time.Now().UTC()

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}

	s.invalidateWorkspace(ctx, workspaceID, false)
	return workspace, nil
}

// ToggleStatus flips the active flag of a workspace
func (s *WorkspaceService) ToggleStatus(ctx context.Context, workspaceID uuid.UUID) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.SetActive(ctx, workspaceID, !workspace.IsActive); err != nil {
		return nil, err
	}
	workspace.IsActive = !workspace.IsActive

	s.invalidateWorkspace(ctx, workspaceID, false)
	return workspace, nil
}

// Delete deletes a workspace; only its owner may do so
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if workspace.OwnerID != userID {
		return domain.Forbidden("only the workspace owner can delete it")
	}

	// members must be collected before the cascade removes their roles
	targets := memberTargets(ctx, s.workspaceRepo, workspaceID, true)

	if err := s.workspaceRepo.Delete(ctx, workspaceID); err != nil {
		return err
	}

	targets = append(targets, cache.Workspace(workspaceID), cache.WorkspaceScope(workspaceID), cache.ProductStats(workspaceID))
	s.cache.Invalidate(ctx, targets...)
	return nil
}

// Join enrols userID as a CUSTOMER of an active workspace
func (s *WorkspaceService) Join(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.RoleAssignment, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !workspace.IsActive {
		return nil, domain.Conflict("workspace is not active")
	}

	assignment := domain.RoleAssignment{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        domain.RoleCustomer,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.workspaceRepo.AssignRole(ctx, assignment); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, append(actorLists(userID),
		cache.UserRoles(userID),
		cache.WorkspaceMembers(workspaceID),
		cache.WorkspaceDashboard(workspaceID),
	)...)
	return &assignment, nil
}

// Members lists the role assignments of a workspace
func (s *WorkspaceService) Members(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error) {
	return cache.ReadThrough(ctx, s.cache, cache.WorkspaceMembers(workspaceID), func(ctx context.Context) ([]domain.WorkspaceMember, error) {
		return s.workspaceRepo.ListMembers(ctx, workspaceID)
	})
}

// RemoveMember revokes every role of a member; the owner cannot be removed
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if workspace.OwnerID == userID {
		return domain.Conflict("cannot remove the workspace owner")
	}

	removed, err := s.workspaceRepo.RemoveMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.NotFound("member")
	}

	s.cache.Invalidate(ctx, append(actorLists(userID),
		cache.UserRoles(userID),
		cache.WorkspaceMembers(workspaceID),
		cache.WorkspaceDashboard(workspaceID),
	)...)
	return nil
}

// RolesForUser returns every role assignment of a user
func (s *WorkspaceService) RolesForUser(ctx context.Context, userID uuid.UUID) (domain.RoleSet, error) {
	roles, err := cache.ReadThrough(ctx, s.cache, cache.UserRoles(userID), func(ctx context.Context) ([]domain.RoleAssignment, error) {
		return s.workspaceRepo.ListRoles(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	return domain.RoleSet(roles), nil
}

func (s *WorkspaceService) invalidateWorkspace(ctx context.Context, workspaceID uuid.UUID, withRoles bool) {
	targets := memberTargets(ctx, s.workspaceRepo, workspaceID, withRoles)
	targets = append(targets, cache.Workspace(workspaceID), cache.WorkspaceScope(workspaceID))
	s.cache.Invalidate(ctx, targets...)
}
