package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/hako/branca"
	"github.com/nicolasparada/go-errs"
)

var (
	ErrInvalidToken = errs.InvalidArgumentError("invalid token")
	ErrExpiredToken = errs.UnauthenticatedError("expired token")
)

// Login exchanges a username for a token. Credential checking lives
// in the identity provider fronting this service; by the time a login
// reaches here the username is already verified.
func (svc *Service) Login(ctx context.Context, in types.Login) (types.AuthOutput, error) {
	var out types.AuthOutput

	if err := in.Validate(); err != nil {
		return out, err
	}

	profile, err := svc.Cockroach.ProfileFromUsername(ctx, types.RetrieveProfileFromUsername{
		Username: in.Username,
	})
	if err != nil {
		return out, err
	}

	out.Profile = profile
	out.Token, err = svc.codec().EncodeToString(profile.ID)
	if err != nil {
		return out, fmt.Errorf("encode auth token: %w", err)
	}

	out.ExpiresAt = time.Now().Add(svc.tokenTTL)

	return out, nil
}

// Token refreshes the auth token for the logged-in user.
func (svc *Service) Token(ctx context.Context) (types.TokenOutput, error) {
	var out types.TokenOutput

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	var err error
	out.Token, err = svc.codec().EncodeToString(user.ID)
	if err != nil {
		return out, fmt.Errorf("encode auth token: %w", err)
	}

	out.ExpiresAt = time.Now().Add(svc.tokenTTL)

	return out, nil
}

// AuthUserIDFromToken decodes the token into a user ID.
func (svc *Service) AuthUserIDFromToken(token string) (string, error) {
	uid, err := svc.codec().DecodeToString(token)
	if err != nil {
		if errors.Is(err, branca.ErrInvalidToken) || errors.Is(err, branca.ErrInvalidTokenVersion) {
			return "", ErrInvalidToken
		}

		if _, ok := err.(*branca.ErrExpiredToken); ok {
			return "", ErrExpiredToken
		}

		// branca wraps the chacha20poly1305 error for a wrong key.
		if strings.HasSuffix(err.Error(), "authentication failed") {
			return "", errs.Unauthenticated
		}

		return "", fmt.Errorf("decode auth token: %w", err)
	}

	return uid, nil
}

func (svc *Service) codec() *branca.Branca {
	cdc := branca.NewBranca(svc.tokenKey)
	cdc.SetTTL(uint32(svc.tokenTTL.Seconds()))
	return cdc
}
