package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/minio"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/disintegration/imaging"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nicolasparada/go-errs"
)

const (
	// MaxMediaBytes caps any single uploaded image.
	MaxMediaBytes = 5 << 20

	avatarSize = 400
)

var ErrUnsupportedMediaType = errs.InvalidArgumentError("unsupported media type")

func (svc *Service) CreateProfile(ctx context.Context, in types.CreateProfile) (types.Profile, error) {
	var out types.Profile

	if err := in.Validate(); err != nil {
		return out, err
	}

	return svc.Cockroach.CreateProfile(ctx, in)
}

func (svc *Service) Profile(ctx context.Context, in types.RetrieveProfile) (types.Profile, error) {
	var out types.Profile

	if err := in.Validate(); err != nil {
		return out, err
	}

	if user, ok := auth.UserFromContext(ctx); ok {
		in.SetLoggedInUserID(user.ID)
	}

	out, err := svc.Cockroach.Profile(ctx, in)
	if err != nil {
		return out, err
	}

	out.SetAvatarURL(svc.mediaURLPrefix + minio.BucketAvatars + "/")
	return out, nil
}

func (svc *Service) ProfileFromUsername(ctx context.Context, in types.RetrieveProfileFromUsername) (types.Profile, error) {
	var out types.Profile

	if err := in.Validate(); err != nil {
		return out, err
	}

	if user, ok := auth.UserFromContext(ctx); ok {
		in.SetLoggedInUserID(user.ID)
	}

	out, err := svc.Cockroach.ProfileFromUsername(ctx, in)
	if err != nil {
		return out, err
	}

	out.SetAvatarURL(svc.mediaURLPrefix + minio.BucketAvatars + "/")
	return out, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, in types.UpdateProfile) (types.Profile, error) {
	var out types.Profile

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	out, err := svc.Cockroach.UpdateProfile(ctx, in)
	if err != nil {
		return out, err
	}

	out.SetAvatarURL(svc.mediaURLPrefix + minio.BucketAvatars + "/")
	return out, nil
}

// UpdateAvatar crops the image to a square thumbnail, stores it and
// points the profile at the new object. Returns the public URL.
func (svc *Service) UpdateAvatar(ctx context.Context, r io.ReadSeeker) (string, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return "", errs.Unauthenticated
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUnsupportedMediaType
	}

	img = imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}

	name, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate avatar name: %w", err)
	}

	attachment := types.Attachment{
		Path:        name + ".png",
		ContentType: "image/png",
		FileSize:    uint64(buf.Len()),
	}
	attachment.SetReader(bytes.NewReader(buf.Bytes()))

	cleanup, err := svc.Minio.Upload(ctx, minio.BucketAvatars, attachment)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	err = svc.Cockroach.UpdateUserAvatar(ctx, types.UpdateUserAvatar{
		UserID: user.ID,
		Avatar: attachment,
	})
	if err != nil {
		go cleanup()
		return "", err
	}

	return svc.mediaURLPrefix + minio.BucketAvatars + "/" + attachment.Path, nil
}

// readImageAttachment buffers and sniffs an upload, rejecting
// non-images and anything over the size cap.
func readImageAttachment(r io.ReadSeeker) (types.Attachment, error) {
	var out types.Attachment

	b, err := io.ReadAll(io.LimitReader(r, MaxMediaBytes+1))
	if err != nil {
		return out, fmt.Errorf("read attachment: %w", err)
	}

	if len(b) > MaxMediaBytes {
		return out, errs.InvalidArgumentError("attachment too large")
	}

	contentType := http.DetectContentType(b)
	if _, _, err := image.Decode(bytes.NewReader(b)); err != nil {
		return out, ErrUnsupportedMediaType
	}

	name, err := gonanoid.New()
	if err != nil {
		return out, fmt.Errorf("generate attachment name: %w", err)
	}

	out.Path = name + extensionFor(contentType)
	out.ContentType = contentType
	out.FileSize = uint64(len(b))
	out.SetReader(bytes.NewReader(b))

	return out, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
