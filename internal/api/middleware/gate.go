package middleware

import (
	"context"
	"net/http"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RoleResolver loads every role assignment of a user
type RoleResolver interface {
	RolesForUser(ctx context.Context, userID uuid.UUID) (domain.RoleSet, error)
}

// Gate authorizes requests against the caller's workspace roles
type Gate struct {
	roles RoleResolver
}

// NewGate creates a new gate
func NewGate(roles RoleResolver) *Gate {
	return &Gate{roles: roles}
}

// Require admits callers holding one of allowed in the workspace named by the
// {workspaceID} path parameter. The matched role and workspace are stored in
// the request context. Requests outside the caller's workspaces, including a
// malformed workspace ID, are Forbidden.
func (g *Gate) Require(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}

			// no role can be held in a workspace that cannot exist
			workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
			if err != nil {
				response.Forbidden(w, "you do not have access to this resource")
				return
			}

			roles, err := g.roles.RolesForUser(r.Context(), userID)
			if err != nil {
				response.FromError(w, err)
				return
			}
			if len(roles) == 0 {
				response.Forbidden(w, "you have no roles assigned")
				return
			}

			role, ok := roles.Match(workspaceID, allowed...)
			if !ok {
				response.Forbidden(w, "you do not have access to this resource")
				return
			}

			ctx := context.WithValue(r.Context(), WorkspaceIDKey, workspaceID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAny admits callers holding one of allowed in any workspace
func (g *Gate) RequireAny(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}

			roles, err := g.roles.RolesForUser(r.Context(), userID)
			if err != nil {
				response.FromError(w, err)
				return
			}

			role, ok := roles.MatchAny(allowed...)
			if !ok {
				response.Forbidden(w, "you do not have access to this resource")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RoleKey, role)))
		})
	}
}

// GetRole gets the role matched by the gate
func GetRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(RoleKey).(domain.Role)
	return role, ok
}
