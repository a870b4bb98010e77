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

type invitationFixture struct {
	invitations *MockInvitationRepository
	workspaces  *MockWorkspaceRepository
	users       *MockUserRepository
	svc         *InvitationService
	now         time.Time
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()
	c, _ := newTestCache(t)
	f := &invitationFixture{
		invitations: new(MockInvitationRepository),
		workspaces:  new(MockWorkspaceRepository),
		users:       new(MockUserRepository),
		now:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewInvitationService(f.invitations, f.workspaces, f.users, nil, c, 0)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestInvitationService_ManagerCannotInviteAdmin(t *testing.T) {
	f := newInvitationFixture(t)

	_, err := f.svc.Invite(context.Background(), uuid.New(), domain.RoleManager, uuid.New(), domain.InvitationCreate{
		Email: "new@example.com",
		Role:  domain.RoleAdmin,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.invitations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvitationService_InviteStoresDigestOnly(t *testing.T) {
	f := newInvitationFixture(t)
	wsID, actorID := uuid.New(), uuid.New()

	f.workspaces.On("GetByID", mock.Anything, wsID).Return(&domain.Workspace{ID: wsID, Name: "Corner Shop"}, nil)
	var stored *domain.Invitation
	f.invitations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invitation")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Invitation) }).
		Return(nil)

	issued, err := f.svc.Invite(context.Background(), actorID, domain.RoleAdmin, wsID, domain.InvitationCreate{
		Email: " New@Example.com ",
		Role:  domain.RoleStaff,
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, issued.Token, 64)
	assert.Equal(t, security.HashToken(issued.Token), stored.TokenHash)
	assert.NotEqual(t, issued.Token, stored.TokenHash)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.Equal(t, f.now.Add(defaultInvitationTTL), stored.ExpiresAt)
	assert.Equal(t, domain.InvitationPending, stored.Status)
}

func TestInvitationService_AcceptExpired(t *testing.T) {
	f := newInvitationFixture(t)
	token := "feedface"
	inv := &domain.Invitation{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		Email:       "staff@example.com",
		Role:        domain.RoleStaff,
		Status:      domain.InvitationPending,
		ExpiresAt:   f.now.Add(-time.Minute),
	}

	f.invitations.On("GetByTokenHash", mock.Anything, security.HashToken(token)).Return(inv, nil)
	f.invitations.On("UpdateStatus", mock.Anything, inv.ID, domain.InvitationExpired).Return(true, nil)

	_, err := f.svc.Accept(context.Background(), uuid.New(), token)

	assert.ErrorIs(t, err, domain.ErrConflict)
	f.invitations.AssertExpectations(t)
	f.invitations.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvitationService_AcceptEmailMismatch(t *testing.T) {
	f := newInvitationFixture(t)
	token, userID := "c0ffee", uuid.New()
	inv := &domain.Invitation{
		ID:        uuid.New(),
		Email:     "staff@example.com",
		Status:    domain.InvitationPending,
		ExpiresAt: f.now.Add(time.Hour),
	}

	f.invitations.On("GetByTokenHash", mock.Anything, security.HashToken(token)).Return(inv, nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "someone@example.com"}, nil)

	_, err := f.svc.Accept(context.Background(), userID, token)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.invitations.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvitationService_AcceptGrantsRole(t *testing.T) {
	f := newInvitationFixture(t)
	token, userID := "b16b00b5", uuid.New()
	inv := &domain.Invitation{
		ID:          uuid.New(),
		WorkspaceID: uuid.New(),
		Email:       "staff@example.com",
		Role:        domain.RoleStaff,
		Status:      domain.InvitationPending,
		ExpiresAt:   f.now.Add(time.Hour),
	}

	f.invitations.On("GetByTokenHash", mock.Anything, security.HashToken(token)).Return(inv, nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "Staff@Example.com"}, nil)
	f.invitations.On("Accept", mock.Anything, inv, userID, f.now).Return(nil)

	accepted, err := f.svc.Accept(context.Background(), userID, token)

	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, f.now, *accepted.AcceptedAt)
}

func TestInvitationService_AcceptRevoked(t *testing.T) {
	f := newInvitationFixture(t)
	token := "deadbeef"
	inv := &domain.Invitation{ID: uuid.New(), Status: domain.InvitationRevoked, ExpiresAt: f.now.Add(time.Hour)}
	f.invitations.On("GetByTokenHash", mock.Anything, security.HashToken(token)).Return(inv, nil)

	_, err := f.svc.Accept(context.Background(), uuid.New(), token)

	assert.ErrorIs(t, err, domain.ErrConflict)
	f.invitations.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvitationService_ListPendingDropsExpired(t *testing.T) {
	f := newInvitationFixture(t)
	wsID := uuid.New()
	live := domain.Invitation{ID: uuid.New(), Status: domain.InvitationPending, ExpiresAt: f.now.Add(time.Hour)}
	stale := domain.Invitation{ID: uuid.New(), Status: domain.InvitationPending, ExpiresAt: f.now}

	f.invitations.On("ListPending", mock.Anything, wsID, f.now).Return([]domain.Invitation{live, stale}, nil)

	got, err := f.svc.ListPending(context.Background(), wsID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)
}

func TestInvitationService_ChangeStatusNotPending(t *testing.T) {
	f := newInvitationFixture(t)
	wsID, id := uuid.New(), uuid.New()
	f.invitations.On("GetByID", mock.Anything, wsID, id).Return(&domain.Invitation{ID: id, Status: domain.InvitationAccepted}, nil)
	f.invitations.On("UpdateStatus", mock.Anything, id, domain.InvitationRevoked).Return(false, nil)

	_, err := f.svc.ChangeStatus(context.Background(), wsID, id, domain.InvitationRevoked)

	assert.ErrorIs(t, err, domain.ErrConflict)
}
