// Package worker runs background maintenance jobs.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultExpiryInterval = time.Hour

// InvitationExpirer marks stale pending invitations as expired
type InvitationExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// ExpiryRecorder observes expiry sweeps
type ExpiryRecorder interface {
	RecordInvitationsExpired(n int64)
}

// InvitationExpiry periodically expires pending invitations past their deadline
type InvitationExpiry struct {
	invitations InvitationExpirer
	recorder    ExpiryRecorder
	interval    time.Duration
}

// NewInvitationExpiry creates the worker. recorder may be nil.
func NewInvitationExpiry(invitations InvitationExpirer, recorder ExpiryRecorder, interval time.Duration) *InvitationExpiry {
	if interval <= 0 {
		interval = defaultExpiryInterval
	}
	return &InvitationExpiry{
		invitations: invitations,
		recorder:    recorder,
		interval:    interval,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done
func (w *InvitationExpiry) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.interval).Msg("invitation expiry worker started")

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("invitation expiry worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs one sweep and returns how many invitations expired
func (w *InvitationExpiry) RunOnce(ctx context.Context) int64 {
	n, err := w.invitations.ExpireStale(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("failed to expire invitations")
		}
		return 0
	}

	if w.recorder != nil {
		w.recorder.RecordInvitationsExpired(n)
	}
	if n > 0 {
		log.Info().Int64("expired", n).Msg("expired stale invitations")
	}
	return n
}
