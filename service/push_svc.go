package service

import (
	"context"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

// RegisterPushSubscription stores a browser push endpoint so the
// recipient can be reached while offline.
func (svc *Service) RegisterPushSubscription(ctx context.Context, in types.RegisterPushSubscription) (types.PushSubscription, error) {
	var out types.PushSubscription

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.CreatePushSubscription(ctx, in)
}

// VAPIDPublicKey is what browsers need to subscribe.
func (svc *Service) VAPIDPublicKey(ctx context.Context) (string, error) {
	if _, ok := auth.UserFromContext(ctx); !ok {
		return "", errs.Unauthenticated
	}

	return svc.vapidPublicKey, nil
}
