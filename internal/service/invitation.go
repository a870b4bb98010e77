package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/Rrens/storefront/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultInvitationTTL = 7 * 24 * time.Hour

// InvitationService handles workspace invitations
type InvitationService struct {
	invitationRepo domain.InvitationRepository
	workspaceRepo  domain.WorkspaceRepository
	userRepo       domain.UserRepository
	notifications  *NotificationService
	cache          *cache.Cache
	ttl            time.Duration
	now            func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	workspaceRepo domain.WorkspaceRepository,
	userRepo domain.UserRepository,
	notifications *NotificationService,
	c *cache.Cache,
	ttl time.Duration,
) *InvitationService {
	if ttl <= 0 {
		ttl = defaultInvitationTTL
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		workspaceRepo:  workspaceRepo,
		userRepo:       userRepo,
		notifications:  notifications,
		cache:          c,
		ttl:            ttl,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Invite issues an invitation. The plain token is only returned here.
func (s *InvitationService) Invite(ctx context.Context, actorID uuid.UUID, actorRole domain.Role, workspaceID uuid.UUID, input domain.InvitationCreate) (*domain.IssuedInvitation, error) {
	if actorRole == domain.RoleManager && input.Role == domain.RoleAdmin {
		return nil, domain.Forbidden("managers cannot invite admins")
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	token, digest, err := security.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	invitation := &domain.Invitation{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Role:        input.Role,
		Status:      domain.InvitationPending,
		TokenHash:   digest,
		InvitedBy:   actorID,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	s.notifyInvitee(ctx, workspace, invitation)

	return &domain.IssuedInvitation{Invitation: invitation, Token: token}, nil
}

// ListPending lists invitations that can still be accepted
func (s *InvitationService) ListPending(ctx context.Context, workspaceID uuid.UUID) ([]domain.Invitation, error) {
	now := s.now()

	stored, err := s.invitationRepo.ListPending(ctx, workspaceID, now)
	if err != nil {
		return nil, err
	}

	pending := make([]domain.Invitation, 0, len(stored))
	for _, inv := range stored {
		if inv.IsPending(now) {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

// Accept redeems an invitation token for userID
func (s *InvitationService) Accept(ctx context.Context, userID uuid.UUID, token string) (*domain.Invitation, error) {
	invitation, err := s.invitationRepo.GetByTokenHash(ctx, security.HashToken(token))
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch invitation.EffectiveStatus(now) {
	case domain.InvitationPending:
	case domain.InvitationExpired:
		if invitation.Status == domain.InvitationPending {
			if _, err := s.invitationRepo.UpdateStatus(ctx, invitation.ID, domain.InvitationExpired); err != nil {
				log.Warn().Err(err).Str("invitation_id", invitation.ID.String()).Msg("failed to mark invitation expired")
			}
		}
		return nil, domain.Conflict("invitation has expired")
	default:
		return nil, domain.Conflict("invitation is no longer pending")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, domain.Forbidden("invitation was issued to a different email")
	}

	if err := s.invitationRepo.Accept(ctx, invitation, userID, now); err != nil {
		return nil, err
	}
	invitation.Status = domain.InvitationAccepted
	invitation.AcceptedAt = &now

	s.cache.Invalidate(ctx, append(actorLists(userID),
		cache.UserRoles(userID),
		cache.WorkspaceMembers(invitation.WorkspaceID),
		cache.WorkspaceDashboard(invitation.WorkspaceID),
	)...)
	return invitation, nil
}

// ChangeStatus revokes or expires a pending invitation
func (s *InvitationService) ChangeStatus(ctx context.Context, workspaceID, id uuid.UUID, status domain.InvitationStatus) (*domain.Invitation, error) {
	if status != domain.InvitationRevoked && status != domain.InvitationExpired {
		return nil, domain.Validation("status must be REVOKED or EXPIRED")
	}

	invitation, err := s.invitationRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.invitationRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Conflict("invitation is no longer pending")
	}
	invitation.Status = status

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return invitation, nil
}

// ExpireStale marks every overdue PENDING invitation EXPIRED
func (s *InvitationService) ExpireStale(ctx context.Context) (int64, error) {
	return s.invitationRepo.ExpireStale(ctx, s.now())
}

func (s *InvitationService) notifyInvitee(ctx context.Context, workspace *domain.Workspace, invitation *domain.Invitation) {
	if s.notifications == nil {
		return
	}

	user, err := s.userRepo.GetByEmail(ctx, invitation.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("invitation_id", invitation.ID.String()).Msg("failed to look up invitee")
		}
		return
	}

	message := "You have been invited to join " + workspace.Name + " as " + string(invitation.Role)
	if err := s.notifications.NotifyUser(ctx, workspace.ID, user.ID, domain.NotificationInvitation, "Workspace invitation", message); err != nil {
		log.Warn().Err(err).Str("invitation_id", invitation.ID.String()).Msg("failed to notify invitee")
	}
}
