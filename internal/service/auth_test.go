package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*AuthService, *MockUserRepository, *MockWorkspaceRepository, *security.JWTManager) {
	users := new(MockUserRepository)
	workspaces := new(MockWorkspaceRepository)
	jwt := security.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(users, workspaces, jwt), users, workspaces, jwt
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, users, _, _ := newAuthService()
	users.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), domain.UserCreate{Email: "taken@example.com", Password: "password123", FirstName: "Ana"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginRoundTrip(t *testing.T) {
	svc, users, _, jwt := newAuthService()
	hash, err := security.HashPassword("password123")
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: hash}

	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)

	pair, err := svc.Login(context.Background(), domain.UserLogin{Email: "ana@example.com", Password: "password123"})
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Login(context.Background(), domain.UserLogin{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc, users, _, _ := newAuthService()
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.NotFound("user"))

	_, err := svc.Login(context.Background(), domain.UserLogin{Email: "ghost@example.com", Password: "x"})

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_Profile(t *testing.T) {
	svc, users, workspaces, _ := newAuthService()
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com"}
	roles := []domain.RoleAssignment{{UserID: user.ID, WorkspaceID: uuid.New(), Role: domain.RoleManager}}

	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	workspaces.On("ListRoles", mock.Anything, user.ID).Return(roles, nil)

	profile, err := svc.Profile(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.User.Email)
	assert.Equal(t, roles, profile.Roles)
}
