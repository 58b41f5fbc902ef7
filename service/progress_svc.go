package service

import (
	"context"
	"fmt"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/emoji"
	"github.com/Roberadesissai/workout-tracker-sub000/minio"
	"github.com/Roberadesissai/workout-tracker-sub000/textutil"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

var (
	ErrPremiumRequired     = errs.PermissionDeniedError("subscription required")
	ErrNotPremium          = errs.PermissionDeniedError("premium profile required")
	ErrCannotSubscribeSelf = errs.InvalidArgumentError("cannot subscribe to self")
)

// CreateProgressPost publishes a progress update. Premium-only posts
// require the author's profile to be premium.
func (svc *Service) CreateProgressPost(ctx context.Context, in types.CreateProgressPost) (types.ProgressPost, error) {
	var out types.ProgressPost

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	if in.PremiumOnly && !user.IsPremium {
		return out, ErrNotPremium
	}

	in.SetLoggedInUserID(user.ID)
	in.Content = textutil.SmartTrim(in.Content)

	var photoURL *string
	cleanup := func() {}
	if in.Photo != nil {
		attachment, err := readImageAttachment(in.Photo)
		if err != nil {
			return out, err
		}

		cleanup, err = svc.Minio.Upload(ctx, minio.BucketProgressPhotos, attachment)
		if err != nil {
			return out, fmt.Errorf("upload progress photo: %w", err)
		}

		url := svc.mediaURLPrefix + minio.BucketProgressPhotos + "/" + attachment.Path
		photoURL = &url
	}

	out, err := svc.Cockroach.CreateProgressPost(ctx, in, photoURL)
	if err != nil {
		go cleanup()
		return out, err
	}

	return out, nil
}

func (svc *Service) ProgressPosts(ctx context.Context, in types.ListProgressPosts) (types.Page[types.ProgressPost], error) {
	var out types.Page[types.ProgressPost]

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	out, err := svc.Cockroach.ProgressPosts(ctx, in)
	if err != nil {
		return out, err
	}

	for i := range out.Items {
		if out.Items[i].User != nil {
			out.Items[i].User.SetAvatarURL(svc.mediaURLPrefix + minio.BucketAvatars + "/")
		}
	}

	return out, nil
}

func (svc *Service) ToggleProgressReaction(ctx context.Context, in types.ToggleProgressReaction) (*string, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if !emoji.IsValid(in.Emoji) {
		return nil, ErrInvalidEmoji
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	ok, err := svc.Cockroach.CanViewProgressPost(ctx, user.ID, in.ProgressPostID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrPremiumRequired
	}

	return svc.Cockroach.ToggleProgressReaction(ctx, in)
}

func (svc *Service) CreateProgressComment(ctx context.Context, in types.CreateProgressComment) (types.Comment, error) {
	var out types.Comment

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)
	in.Content = textutil.SmartTrim(in.Content)

	ok, err := svc.Cockroach.CanViewProgressPost(ctx, user.ID, in.ProgressPostID)
	if err != nil {
		return out, err
	}

	if !ok {
		return out, ErrPremiumRequired
	}

	return svc.Cockroach.CreateProgressComment(ctx, in)
}

// SubscribeToCreator unlocks a premium creator's progress posts for
// the subscriber. Billing runs elsewhere; this records entitlement.
func (svc *Service) SubscribeToCreator(ctx context.Context, in types.SubscribeToCreator) (types.ProgressSubscription, error) {
	var out types.ProgressSubscription

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	if in.CreatorID == user.ID {
		return out, ErrCannotSubscribeSelf
	}

	in.SetLoggedInUserID(user.ID)

	creator, err := svc.Cockroach.Profile(ctx, types.RetrieveProfile{ProfileID: in.CreatorID})
	if err != nil {
		return out, err
	}

	if !creator.IsPremium {
		return out, ErrNotPremium
	}

	return svc.Cockroach.CreateProgressSubscription(ctx, in)
}
