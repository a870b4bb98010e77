package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
	InvitationRevoked  InvitationStatus = "REVOKED"
)

// Invitation offers a role in a workspace to an email address
type Invitation struct {
	ID          uuid.UUID        `json:"id"`
	WorkspaceID uuid.UUID        `json:"workspace_id"`
	Email       string           `json:"email"`
	Role        Role             `json:"role"`
	Status      InvitationStatus `json:"status"`
	TokenHash   string           `json:"-"`
	InvitedBy   uuid.UUID        `json:"invited_by"`
	ExpiresAt   time.Time        `json:"expires_at"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// EffectiveStatus treats a PENDING invitation past its expiry as EXPIRED,
// whether or not the stored row has been updated yet.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && !now.Before(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// IsPending reports whether the invitation can still be accepted at now
func (i *Invitation) IsPending(now time.Time) bool {
	return i.EffectiveStatus(now) == InvitationPending
}

// InvitationCreate represents invitation input
type InvitationCreate struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  Role   `json:"role" validate:"required,oneof=ADMIN MANAGER STAFF CUSTOMER"`
}

// InvitationAccept carries the token from the invitation link
type InvitationAccept struct {
	Token string `json:"token" validate:"required,len=64,hexadecimal"`
}

// InvitationStatusUpdate changes a pending invitation's status
type InvitationStatusUpdate struct {
	Status InvitationStatus `json:"status" validate:"required,oneof=REVOKED EXPIRED"`
}

// IssuedInvitation is returned once on creation; the plain token is never stored
type IssuedInvitation struct {
	Invitation *Invitation `json:"invitation"`
	Token      string      `json:"token"`
}
