package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInvitation_EffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    domain.InvitationStatus
		expiresAt time.Time
		want      domain.InvitationStatus
	}{
		{"pending and fresh", domain.InvitationPending, now.Add(time.Hour), domain.InvitationPending},
		{"pending past expiry", domain.InvitationPending, now.Add(-time.Second), domain.InvitationExpired},
		{"pending at expiry instant", domain.InvitationPending, now, domain.InvitationExpired},
		{"accepted past expiry", domain.InvitationAccepted, now.Add(-time.Hour), domain.InvitationAccepted},
		{"revoked", domain.InvitationRevoked, now.Add(time.Hour), domain.InvitationRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := domain.Invitation{Status: tt.status, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, inv.EffectiveStatus(now))
			assert.Equal(t, tt.want == domain.InvitationPending, inv.IsPending(now))
		})
	}
}

func TestOrderStatus_CanTransition(t *testing.T) {
	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderPending:    {domain.OrderProcessing, domain.OrderCancelled},
		domain.OrderProcessing: {domain.OrderShipped, domain.OrderCancelled},
		domain.OrderShipped:    {domain.OrderDelivered},
		domain.OrderDelivered:  {domain.OrderCompleted},
	}
	all := []domain.OrderStatus{
		domain.OrderPending, domain.OrderProcessing, domain.OrderShipped,
		domain.OrderDelivered, domain.OrderCompleted, domain.OrderCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestProductVariant_ApplyStockInvariant(t *testing.T) {
	v := domain.ProductVariant{Stock: 0, IsAvailable: true}
	v.ApplyStockInvariant()
	assert.False(t, v.IsAvailable)

	v = domain.ProductVariant{Stock: -3, IsAvailable: true}
	v.ApplyStockInvariant()
	assert.Equal(t, 0, v.Stock)
	assert.False(t, v.IsAvailable)

	v = domain.ProductVariant{Stock: 4, IsAvailable: true}
	v.ApplyStockInvariant()
	assert.True(t, v.IsAvailable)
	assert.True(t, v.IsLowStock())
}

func TestRoleSet_Match(t *testing.T) {
	wsA, wsB := uuid.New(), uuid.New()
	roles := domain.RoleSet{
		{WorkspaceID: wsA, Role: domain.RoleStaff},
		{WorkspaceID: wsB, Role: domain.RoleAdmin},
	}

	role, ok := roles.Match(wsA, domain.RoleAdmin, domain.RoleStaff)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleStaff, role)

	// ADMIN in another workspace grants nothing here
	_, ok = roles.Match(wsA, domain.RoleAdmin)
	assert.False(t, ok)

	_, ok = domain.RoleSet{}.Match(wsA, domain.RoleAdmin, domain.RoleManager, domain.RoleStaff, domain.RoleCustomer)
	assert.False(t, ok)

	assert.True(t, roles.InWorkspace(wsB))
	assert.False(t, roles.InWorkspace(uuid.New()))
}

func TestRoleSet_MatchPrefersHighestRole(t *testing.T) {
	ws, other := uuid.New(), uuid.New()
	roles := domain.RoleSet{
		{WorkspaceID: ws, Role: domain.RoleCustomer},
		{WorkspaceID: ws, Role: domain.RoleStaff},
		{WorkspaceID: other, Role: domain.RoleManager},
		{WorkspaceID: ws, Role: domain.RoleAdmin},
	}

	role, ok := roles.Match(ws, domain.RoleAdmin, domain.RoleManager, domain.RoleStaff, domain.RoleCustomer)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)

	// only roles in allowed compete
	role, ok = roles.Match(ws, domain.RoleStaff, domain.RoleCustomer)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleStaff, role)

	role, ok = roles.MatchAny(domain.RoleManager, domain.RoleStaff, domain.RoleCustomer)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleManager, role)

	assert.Greater(t, domain.RoleAdmin.Rank(), domain.RoleManager.Rank())
	assert.Zero(t, domain.Role("OWNER").Rank())
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("loading: %w", domain.NotFound("product"))

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, errors.Is(err, domain.ErrConflict))

	kind, ok := domain.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, domain.KindNotFound, kind)
	assert.Equal(t, "loading: product not found", err.Error())

	_, ok = domain.KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestNotificationQuery_Normalize(t *testing.T) {
	q := domain.NotificationQuery{}
	assert.NoError(t, q.Normalize())
	assert.Equal(t, domain.DefaultNotificationLimit, q.Limit)

	q = domain.NotificationQuery{Limit: 101}
	assert.ErrorIs(t, q.Normalize(), domain.ErrValidation)

	q = domain.NotificationQuery{Limit: 10, Offset: -1}
	assert.ErrorIs(t, q.Normalize(), domain.ErrValidation)

	bad := domain.NotificationType("SPAM")
	q = domain.NotificationQuery{Type: &bad}
	assert.ErrorIs(t, q.Normalize(), domain.ErrValidation)
}
