package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role is a per-workspace permission level
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Workspace represents a tenant store
type Workspace struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"is_active"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkspaceCreate represents workspace creation data
type WorkspaceCreate struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Location    string `json:"location" validate:"omitempty,max=255"`
}

// WorkspaceUpdate represents workspace update data
type WorkspaceUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

// RoleAssignment grants one role in one workspace
type RoleAssignment struct {
	UserID      uuid.UUID `json:"user_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkspaceMember is a member row with user details
type WorkspaceMember struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Rank orders roles by privilege; ADMIN ranks highest and unknown roles zero
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 4
	case RoleManager:
		return 3
	case RoleStaff:
		return 2
	case RoleCustomer:
		return 1
	}
	return 0
}

// RoleSet is every role a user holds across workspaces
type RoleSet []RoleAssignment

// Match returns the most privileged role held in workspaceID that appears in allowed
func (s RoleSet) Match(workspaceID uuid.UUID, allowed ...Role) (Role, bool) {
	return s.best(allowed, func(a RoleAssignment) bool { return a.WorkspaceID == workspaceID })
}

// MatchAny returns the most privileged role held in any workspace that appears in allowed
func (s RoleSet) MatchAny(allowed ...Role) (Role, bool) {
	return s.best(allowed, func(RoleAssignment) bool { return true })
}

func (s RoleSet) best(allowed []Role, keep func(RoleAssignment) bool) (Role, bool) {
	var found Role
	for _, a := range s {
		if !keep(a) || !slices.Contains(allowed, a.Role) {
			continue
		}
		if a.Role.Rank() > found.Rank() {
			found = a.Role
		}
	}
	return found, found != ""
}

// Has reports whether the set holds role in workspaceID
func (s RoleSet) Has(workspaceID uuid.UUID, role Role) bool {
	_, ok := s.Match(workspaceID, role)
	return ok
}

// InWorkspace reports whether the set holds any role in workspaceID
func (s RoleSet) InWorkspace(workspaceID uuid.UUID) bool {
	for _, a := range s {
		if a.WorkspaceID == workspaceID {
			return true
		}
	}
	return false
}
