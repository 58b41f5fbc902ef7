package service

import (
	"context"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

var ErrCannotBlockSelf = errs.InvalidArgumentError("cannot block self")

// Block severs the pair in one transaction: the block row is created
// and every message and follow between the two users is deleted, both
// directions. Subscribers of either side learn about the removed
// messages through delete events.
func (svc *Service) Block(ctx context.Context, in types.BlockUser) (types.Block, error) {
	var out types.Block

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	if in.TargetID == user.ID {
		return out, ErrCannotBlockSelf
	}

	in.SetLoggedInUserID(user.ID)

	cleanup, err := svc.Cockroach.CreateBlock(ctx, user.ID, in.TargetID)
	if err != nil {
		return out, err
	}

	svc.background(func(ctx context.Context) error {
		for _, msg := range cleanup.DeletedMessages {
			ev, err := realtime.NewEvent(realtime.EventDelete, "messages", msg)
			if err != nil {
				return err
			}

			if err := svc.Broker.Pub(realtime.MessagesTopic(msg.SenderID), ev); err != nil {
				return err
			}

			if err := svc.Broker.Pub(realtime.MessagesTopic(msg.RecipientID), ev); err != nil {
				return err
			}
		}

		return nil
	})

	return cleanup.Block, nil
}

func (svc *Service) Unblock(ctx context.Context, in types.UnblockUser) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.DeleteBlock(ctx, user.ID, in.TargetID)
}

// BlockedUsers lists the users the logged-in user has blocked.
func (svc *Service) BlockedUsers(ctx context.Context) ([]types.Block, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	return svc.Cockroach.BlockedUsers(ctx, user.ID)
}
