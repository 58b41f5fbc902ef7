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

var ErrInvalidEmoji = errs.InvalidArgumentError("invalid emoji")

func (svc *Service) CreatePost(ctx context.Context, in types.CreatePost) (types.Post, error) {
	var out types.Post

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)
	in.Content = textutil.SmartTrim(in.Content)

	var mediaURL *string
	cleanup := func() {}
	if in.Media != nil {
		attachment, err := readImageAttachment(in.Media)
		if err != nil {
			return out, err
		}

		cleanup, err = svc.Minio.Upload(ctx, minio.BucketMessageMedia, attachment)
		if err != nil {
			return out, fmt.Errorf("upload post media: %w", err)
		}

		url := svc.mediaURLPrefix + minio.BucketMessageMedia + "/" + attachment.Path
		mediaURL = &url
	}

	out, err := svc.Cockroach.CreatePost(ctx, in, mediaURL)
	if err != nil {
		go cleanup()
		return out, err
	}

	return out, nil
}

func (svc *Service) Posts(ctx context.Context, in types.ListPosts) (types.Page[types.Post], error) {
	var out types.Page[types.Post]

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	out, err := svc.Cockroach.Posts(ctx, in)
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

// ToggleReaction sets, swaps or clears the viewer's reaction and
// returns the resulting emoji, nil when cleared.
func (svc *Service) ToggleReaction(ctx context.Context, in types.ToggleReaction) (*string, error) {
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

	if err := svc.Cockroach.PostExists(ctx, in.PostID); err != nil {
		return nil, err
	}

	return svc.Cockroach.ToggleReaction(ctx, in)
}

func (svc *Service) CreateComment(ctx context.Context, in types.CreateComment) (types.Comment, error) {
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

	if err := svc.Cockroach.PostExists(ctx, in.PostID); err != nil {
		return out, err
	}

	return svc.Cockroach.CreateComment(ctx, in)
}

func (svc *Service) Comments(ctx context.Context, in types.ListComments) (types.Page[types.Comment], error) {
	var out types.Page[types.Comment]

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	out, err := svc.Cockroach.Comments(ctx, in)
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
