package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/storefront/internal/api/middleware"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRoles struct {
	roles domain.RoleSet
	err   error
	calls int
}

func (s *staticRoles) RolesForUser(context.Context, uuid.UUID) (domain.RoleSet, error) {
	s.calls++
	return s.roles, s.err
}

func gatedRouter(t *testing.T, jwt *security.JWTManager, gate *middleware.Gate, allowed ...domain.Role) http.Handler {
	t.Helper()
	auth := middleware.NewAuthMiddleware(jwt)

	r := chi.NewRouter()
	r.With(auth.Authenticate, gate.Require(allowed...)).Get("/workspaces/{workspaceID}/orders", func(w http.ResponseWriter, r *http.Request) {
		role, _ := middleware.GetRole(r.Context())
		ws, _ := middleware.GetWorkspaceID(r.Context())
		w.Header().Set("X-Role", string(role))
		w.Header().Set("X-Workspace", ws.String())
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func request(t *testing.T, h http.Handler, token, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGate_Require(t *testing.T) {
	jwt := security.NewJWTManager("gate-secret", time.Minute, time.Hour)
	userID, wsA, wsB := uuid.New(), uuid.New(), uuid.New()
	token, err := jwt.GenerateAccessToken(userID, "staff@example.com")
	require.NoError(t, err)

	resolver := &staticRoles{roles: domain.RoleSet{
		{UserID: userID, WorkspaceID: wsA, Role: domain.RoleStaff},
		{UserID: userID, WorkspaceID: wsB, Role: domain.RoleCustomer},
	}}
	h := gatedRouter(t, jwt, middleware.NewGate(resolver), domain.RoleAdmin, domain.RoleManager, domain.RoleStaff)

	t.Run("role matches workspace", func(t *testing.T) {
		rec := request(t, h, token, "/workspaces/"+wsA.String()+"/orders")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "STAFF", rec.Header().Get("X-Role"))
		assert.Equal(t, wsA.String(), rec.Header().Get("X-Workspace"))
	})

	t.Run("role held elsewhere only", func(t *testing.T) {
		rec := request(t, h, token, "/workspaces/"+wsB.String()+"/orders")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("foreign workspace", func(t *testing.T) {
		rec := request(t, h, token, "/workspaces/"+uuid.NewString()+"/orders")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := request(t, h, "", "/workspaces/"+wsA.String()+"/orders")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := request(t, h, "not-a-jwt", "/workspaces/"+wsA.String()+"/orders")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad workspace id", func(t *testing.T) {
		rec := request(t, h, token, "/workspaces/nope/orders")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGate_NoRoles(t *testing.T) {
	jwt := security.NewJWTManager("gate-secret", time.Minute, time.Hour)
	token, err := jwt.GenerateAccessToken(uuid.New(), "new@example.com")
	require.NoError(t, err)

	h := gatedRouter(t, jwt, middleware.NewGate(&staticRoles{}), domain.RoleCustomer)

	rec := request(t, h, token, "/workspaces/"+uuid.NewString()+"/orders")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGate_ResolverFailure(t *testing.T) {
	jwt := security.NewJWTManager("gate-secret", time.Minute, time.Hour)
	token, err := jwt.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	h := gatedRouter(t, jwt, middleware.NewGate(&staticRoles{err: errors.New("connection reset")}), domain.RoleAdmin)

	rec := request(t, h, token, "/workspaces/"+uuid.NewString()+"/orders")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGate_RequireAny(t *testing.T) {
	jwt := security.NewJWTManager("gate-secret", time.Minute, time.Hour)
	userID := uuid.New()
	token, err := jwt.GenerateAccessToken(userID, "a@example.com")
	require.NoError(t, err)

	resolver := &staticRoles{roles: domain.RoleSet{{UserID: userID, WorkspaceID: uuid.New(), Role: domain.RoleManager}}}
	gate := middleware.NewGate(resolver)
	auth := middleware.NewAuthMiddleware(jwt)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/cache/flush", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	auth.Authenticate(gate.RequireAny(domain.RoleAdmin)(ok)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	auth.Authenticate(gate.RequireAny(domain.RoleAdmin, domain.RoleManager)(ok)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticateStream_QueryToken(t *testing.T) {
	jwt := security.NewJWTManager("stream-secret", time.Minute, time.Hour)
	userID := uuid.New()
	token, err := jwt.GenerateAccessToken(userID, "a@example.com")
	require.NoError(t, err)

	auth := middleware.NewAuthMiddleware(jwt)
	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.GetUserID(r.Context())
	})

	rec := httptest.NewRecorder()
	auth.AuthenticateStream(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?access_token="+token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen)

	rec = httptest.NewRecorder()
	auth.Authenticate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?access_token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, int, time.Time, error) {
	return s.allowed, 7, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC), s.err
}

func TestRateLimit(t *testing.T) {
	jwt := security.NewJWTManager("limit-secret", time.Minute, time.Hour)
	token, err := jwt.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)
	auth := middleware.NewAuthMiddleware(jwt)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(l middleware.Limiter) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		auth.Authenticate(middleware.NewRateLimitMiddleware(l).Limit(ok)).ServeHTTP(rec, req)
		return rec
	}

	rec := serve(stubLimiter{allowed: true})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2026-01-01T00:01:00Z", rec.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusTooManyRequests, serve(stubLimiter{allowed: false}).Code)

	// redis down: fail open
	assert.Equal(t, http.StatusOK, serve(stubLimiter{err: errors.New("dial tcp: refused")}).Code)
}
