package service

import (
	"context"
	"fmt"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

// Heartbeat marks the logged-in user online and refreshes last_seen.
// Clients call this periodically while the app is foregrounded.
func (svc *Service) Heartbeat(ctx context.Context) error {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	return svc.setPresence(ctx, user.ID, true)
}

// Offline marks the logged-in user offline, leaving last_seen at the
// final heartbeat.
func (svc *Service) Offline(ctx context.Context) error {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	return svc.setPresence(ctx, user.ID, false)
}

func (svc *Service) setPresence(ctx context.Context, userID string, online bool) error {
	profile, err := svc.Cockroach.SetPresence(ctx, userID, online)
	if err != nil {
		return err
	}

	svc.background(func(ctx context.Context) error {
		ev, err := realtime.NewEvent(realtime.EventUpdate, "profiles", profile)
		if err != nil {
			return err
		}

		return svc.Broker.Pub(realtime.PresenceTopic(userID), ev)
	})

	return nil
}

// PresenceStream follows one profile's presence changes until ctx is
// done. Any authenticated user may watch any profile.
func (svc *Service) PresenceStream(ctx context.Context, userID string) (<-chan types.Profile, error) {
	if _, ok := auth.UserFromContext(ctx); !ok {
		return nil, errs.Unauthenticated
	}

	out := make(chan types.Profile)
	unsub, err := svc.Broker.Sub(realtime.PresenceTopic(userID), func(ev realtime.Event) {
		profile, err := realtime.DecodeRow[types.Profile](ev)
		if err != nil {
			_ = svc.Logger.Log("err", fmt.Errorf("decode presence event: %w", err))
			return
		}

		select {
		case out <- profile:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to presence stream: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := unsub(); err != nil {
			_ = svc.Logger.Log("err", fmt.Errorf("unsubscribe from presence stream: %w", err))
		}

		close(out)
	}()

	return out, nil
}
