package service

import (
	"context"
	"errors"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/cockroach"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

var (
	ErrCannotFollowSelf = errs.InvalidArgumentError("cannot follow self")
	ErrBlocked          = errs.PermissionDeniedError("interaction not allowed")
)

// Follow creates the relationship in pending state when the target
// profile is private, accepted otherwise.
func (svc *Service) Follow(ctx context.Context, in types.FollowUser) (types.Follow, error) {
	var out types.Follow

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	if in.TargetID == user.ID {
		return out, ErrCannotFollowSelf
	}

	in.SetLoggedInUserID(user.ID)

	blocked, err := svc.Cockroach.BlockedEitherWay(ctx, user.ID, in.TargetID)
	if err != nil {
		return out, err
	}

	if blocked {
		return out, ErrBlocked
	}

	target, err := svc.Cockroach.Profile(ctx, types.RetrieveProfile{ProfileID: in.TargetID})
	if err != nil {
		return out, err
	}

	status := types.FollowStatusAccepted
	if target.IsProfilePrivate {
		status = types.FollowStatusPending
	}

	return svc.Cockroach.CreateFollow(ctx, user.ID, in.TargetID, status)
}

// Unfollow also cancels an outgoing pending request; both are the
// same row.
func (svc *Service) Unfollow(ctx context.Context, in types.UnfollowUser) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.DeleteFollow(ctx, user.ID, in.TargetID)
}

func (svc *Service) AcceptFollowRequest(ctx context.Context, in types.AcceptFollowRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.AcceptFollow(ctx, in.FollowerID, user.ID)
}

func (svc *Service) RejectFollowRequest(ctx context.Context, in types.RejectFollowRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.DeleteFollow(ctx, in.FollowerID, user.ID)
}

// FollowRequests lists incoming pending requests for the logged-in
// user.
func (svc *Service) FollowRequests(ctx context.Context) ([]types.Follow, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	return svc.Cockroach.FollowRequests(ctx, user.ID)
}

// canMessage is the relationship gate for direct messages: blocked
// pairs never message, private recipients require an accepted follow
// from the sender, public recipients are open to anyone.
func (svc *Service) canMessage(ctx context.Context, senderID string, recipient types.Profile) (bool, error) {
	if senderID == recipient.ID {
		return false, nil
	}

	blocked, err := svc.Cockroach.BlockedEitherWay(ctx, senderID, recipient.ID)
	if err != nil {
		return false, err
	}

	if blocked {
		return false, nil
	}

	if !recipient.IsProfilePrivate {
		return true, nil
	}

	follow, err := svc.Cockroach.FollowBetween(ctx, senderID, recipient.ID)
	if errors.Is(err, cockroach.ErrFollowNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return follow.Status == types.FollowStatusAccepted, nil
}

// CanMessage exposes the gate so clients can disable composers
// up-front instead of failing on send.
func (svc *Service) CanMessage(ctx context.Context, recipientID string) (bool, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return false, errs.Unauthenticated
	}

	recipient, err := svc.Cockroach.Profile(ctx, types.RetrieveProfile{ProfileID: recipientID})
	if err != nil {
		return false, err
	}

	return svc.canMessage(ctx, user.ID, recipient)
}
