package auth

import (
	"context"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

var ctxKeyUser = struct{ name string }{name: "ctx-key-user"}

func ContextWithUser(ctx context.Context, user types.Profile) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func UserFromContext(ctx context.Context) (types.Profile, bool) {
	user, ok := ctx.Value(ctxKeyUser).(types.Profile)
	return user, ok
}
